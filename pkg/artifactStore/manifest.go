package artifactStore

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"github.com/gocarina/gocsv"
)

const ManifestFileName = "manifest.csv"

type ManifestRecord struct {
	CreatedAt string `csv:"created_at"`
	Kind      string `csv:"kind"`
	Path      string `csv:"path"`
	Sha256    string `csv:"sha256"`
	Source    string `csv:"source"`
}

func newManifestRecord(a *Artifact) *ManifestRecord {
	return &ManifestRecord{
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		Kind:      a.Kind,
		Path:      a.Path,
		Sha256:    a.Sha256(),
		Source:    a.Source,
	}
}

func appendManifest(dir string, a *Artifact) error {
	manifestPath := filepath.Join(dir, ManifestFileName)
	records := []*ManifestRecord{newManifestRecord(a)}

	_, statErr := os.Stat(manifestPath)
	isNew := os.IsNotExist(statErr)

	file, err := openManifest(manifestPath)
	if err != nil {
		return abiErrors.Wrapf("manifest", abiErrors.ErrIO, err, "could not open %s", manifestPath)
	}

	if isNew {
		err = gocsv.Marshal(&records, file)
	} else {
		err = gocsv.MarshalWithoutHeaders(&records, file)
	}
	if err != nil {
		_ = file.Close()
		return abiErrors.Wrapf("manifest", abiErrors.ErrIO, err, "could not append to %s", manifestPath)
	}
	if err := file.Close(); err != nil {
		return abiErrors.Wrapf("manifest", abiErrors.ErrIO, err, "could not close %s", manifestPath)
	}
	return nil
}

// openManifest is replaced in tests to observe close failures.
var openManifest = func(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// ReadManifest loads every record of dir/manifest.csv.
func ReadManifest(dir string) ([]*ManifestRecord, error) {
	manifestPath := filepath.Join(dir, ManifestFileName)
	file, err := os.Open(manifestPath)
	if err != nil {
		return nil, abiErrors.Wrapf("manifest", abiErrors.ErrIO, err, "could not open %s", manifestPath)
	}
	defer file.Close()

	records := []*ManifestRecord{}
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, abiErrors.Wrapf("manifest", abiErrors.ErrIO, err, "could not parse %s", manifestPath)
	}
	return records, nil
}
