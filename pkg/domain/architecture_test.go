package domain_test

import (
	"testing"

	"mendel/testutil"
)

func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "domain must not depend on implementations")
	testutil.AssertNoTransitiveDependency(t, ".", testutil.InternalImportForbidden, "domain must not depend on implementations")
}
