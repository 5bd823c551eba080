package interfaces

import (
	"testing"

	"github.com/ingo-eichhorst/modguard/pkg/types"
)

func TestCheckMemberTopLevelModule(t *testing.T) {
	compiled, err := Compile(nil)
	if err != nil {
		t.Fatal(err)
	}
	res := CheckMember(compiled, "pkg.mod", "", nil)
	if res.Kind != ResultTopLevelModule {
		t.Fatalf("expected TopLevelModule, got %v", res.Kind)
	}
}

func TestCheckMemberNoInterfaces(t *testing.T) {
	compiled, err := Compile([]types.InterfaceConfig{
		{Expose: []string{"public_.*"}, FromModules: []string{"other\\..*"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	res := CheckMember(compiled, "pkg.mod", "public_fn", nil)
	if res.Kind != ResultNoInterfaces {
		t.Fatalf("expected NoInterfaces, got %v", res.Kind)
	}
}

func TestCheckMemberExposedAndNotExposed(t *testing.T) {
	compiled, err := Compile([]types.InterfaceConfig{
		{Expose: []string{"public_.*"}, FromModules: []string{"pkg\\..*"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	exposed := CheckMember(compiled, "pkg.mod", "public_fn", nil)
	if exposed.Kind != ResultExposed {
		t.Fatalf("expected Exposed, got %v", exposed.Kind)
	}

	notExposed := CheckMember(compiled, "pkg.mod", "_private_fn", nil)
	if notExposed.Kind != ResultNotExposed {
		t.Fatalf("expected NotExposed, got %v", notExposed.Kind)
	}
}

func TestCheckMemberFirstMatchingInterfaceWins(t *testing.T) {
	compiled, err := Compile([]types.InterfaceConfig{
		{Expose: []string{"shared"}, FromModules: []string{"pkg\\..*"}, DataTypes: types.DataTypesPrimitive},
		{Expose: []string{"shared"}, FromModules: []string{"pkg\\..*"}, DataTypes: types.DataTypesAll},
	})
	if err != nil {
		t.Fatal(err)
	}

	res := CheckMember(compiled, "pkg.mod", "shared", nil)
	if res.Kind != ResultExposed || res.TypeCheckResult != TypeCheckUnknown {
		t.Fatalf("expected Exposed/Unknown with no type checker, got %+v", res)
	}

	tc, err := NewCachedTypeChecker(4, func(modulePath, member string) string { return "CustomClass" })
	if err != nil {
		t.Fatal(err)
	}
	res = CheckMember(compiled, "pkg.mod", "shared", tc)
	if res.Kind != ResultExposed || res.TypeCheckResult != TypeCheckDidNotMatch {
		t.Fatalf("expected the first interface's primitive data_types to apply, got %+v", res)
	}
}

func TestCachedTypeCheckerPrimitiveVsNonPrimitive(t *testing.T) {
	resolver := func(modulePath, member string) string {
		if member == "count" {
			return "int"
		}
		return "CustomClass"
	}
	tc, err := NewCachedTypeChecker(16, resolver)
	if err != nil {
		t.Fatal(err)
	}

	if got := tc.Check("pkg.mod", "count", types.DataTypesPrimitive); got != TypeCheckPass {
		t.Errorf("expected Pass for int annotation, got %v", got)
	}
	if got := tc.Check("pkg.mod", "thing", types.DataTypesPrimitive); got != TypeCheckDidNotMatch {
		t.Errorf("expected DidNotMatch for CustomClass annotation, got %v", got)
	}
	if got := tc.Check("pkg.mod", "thing", types.DataTypesAll); got != TypeCheckPass {
		t.Errorf("expected Pass when data_types=all, got %v", got)
	}
}
