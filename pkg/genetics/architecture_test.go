package genetics_test

import (
	"testing"

	"mendel/testutil"
)

func TestEngineImportsOnlyStandardLibrary(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "engine must not depend on internal packages")
	testutil.AssertNoDirectImports(t, ".", testutil.ThirdPartyImportForbidden, "engine is pure standard library")
	testutil.AssertNoTransitiveDependency(t, ".", testutil.ThirdPartyImportForbidden, "engine is pure standard library")
}
