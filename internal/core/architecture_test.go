package core_test

import (
	"testing"

	"partpulse/testutil"
)

func TestCoreStaysTransportAgnostic(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.TransportImportForbidden, "core is driven by adapters, never the reverse")
}
