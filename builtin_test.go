package authrim

import (
	"testing"

	"github.com/sgrastar/authrim-sub000/plan"
)

func TestBuiltinFlowsLoadAndCompile(t *testing.T) {
	flows, err := loadBuiltins()
	if err != nil {
		t.Fatalf("loadBuiltins failed: %v", err)
	}

	for _, flowType := range []string{"login", "registration"} {
		def, ok := flows[flowType]
		if !ok {
			t.Fatalf("missing builtin flow %q", flowType)
		}
		if _, err := plan.Compile(def); err != nil {
			t.Fatalf("builtin %q does not compile: %v", flowType, err)
		}
	}
}
