package compiler

import (
	"os"
	"path/filepath"

	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	solcConfig "github.com/fabelx/go-solc-select/pkg/config"
	"github.com/fabelx/go-solc-select/pkg/installer"
	"github.com/fabelx/go-solc-select/pkg/versions"
)

// FindManagedCompiler returns the path of a solc release installed by go-solc-select,
// installing it first when missing.
func FindManagedCompiler(version string) (string, error) {
	if _, ok := versions.GetInstalled()[version]; !ok {
		if err := installer.InstallSolc(version); err != nil {
			return "", abiErrors.Wrapf("find_managed_compiler", abiErrors.ErrCompiler, err, "failed to install solc %s", version)
		}
	}
	solc, ok := versions.GetInstalled()[version]
	if !ok {
		return "", abiErrors.Newf("find_managed_compiler", abiErrors.ErrCompiler, "failed to find solc %s", version)
	}
	solc = "solc-" + solc

	fileName := filepath.Join(solcConfig.SolcArtifacts, solc, solc)
	if _, err := os.Stat(fileName); err != nil {
		return "", abiErrors.Wrapf("find_managed_compiler", abiErrors.ErrCompiler, err, "failed to find solc %s", version)
	}
	return fileName, nil
}
