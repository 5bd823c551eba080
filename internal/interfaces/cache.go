package interfaces

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ingo-eichhorst/modguard/pkg/types"
)

type typeCheckKey struct {
	modulePath string
	member     string
	mode       types.DataTypesMode
}

// AnnotationResolver reports the declared type annotation for a module
// member, "" if the member carries no annotation or does not exist.
type AnnotationResolver func(modulePath, member string) string

// CachedTypeChecker memoizes per-member data_types compatibility checks
// behind an LRU, since the same exported member is frequently imported
// from many files.
type CachedTypeChecker struct {
	cache    *lru.Cache[typeCheckKey, TypeCheckResult]
	resolver AnnotationResolver
}

// NewCachedTypeChecker builds a type checker with room for size entries.
func NewCachedTypeChecker(size int, resolver AnnotationResolver) (*CachedTypeChecker, error) {
	cache, err := lru.New[typeCheckKey, TypeCheckResult](size)
	if err != nil {
		return nil, err
	}
	return &CachedTypeChecker{cache: cache, resolver: resolver}, nil
}

// Check implements TypeChecker.
func (c *CachedTypeChecker) Check(modulePath, member string, mode types.DataTypesMode) TypeCheckResult {
	key := typeCheckKey{modulePath: modulePath, member: member, mode: mode}
	if v, ok := c.cache.Get(key); ok {
		return v
	}

	result := c.evaluate(modulePath, member, mode)
	c.cache.Add(key, result)
	return result
}

func (c *CachedTypeChecker) evaluate(modulePath, member string, mode types.DataTypesMode) TypeCheckResult {
	if mode == "" || mode == types.DataTypesAll {
		return TypeCheckPass
	}

	annotation := c.resolver(modulePath, member)
	if annotation == "" {
		return TypeCheckUnknown
	}
	if isPrimitiveAnnotation(annotation) {
		return TypeCheckPass
	}
	return TypeCheckDidNotMatch
}

// primitiveAnnotations are the builtin type names data_types = "primitive"
// accepts, matching Python's builtin scalar/container types.
var primitiveAnnotations = map[string]bool{
	"int": true, "float": true, "bool": true, "str": true, "bytes": true,
	"None": true, "list": true, "dict": true, "tuple": true, "set": true,
	"frozenset": true,
}

func isPrimitiveAnnotation(annotation string) bool {
	return primitiveAnnotations[annotation]
}
