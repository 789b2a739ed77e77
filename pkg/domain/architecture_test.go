package domain_test

import (
	"testing"

	"partpulse/testutil"
)

func TestDomainImportsNoImplementationPackages(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.AnyOf(testutil.InternalImportForbidden, testutil.TransportImportForbidden),
		"domain types are shared by stores, the service and adapters")
}
