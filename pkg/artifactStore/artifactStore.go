package artifactStore

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	WorkingDirectoryName = "tmp"

	// TimestampLayout renders DD-MM-YYYY_HH:MM. Two artifacts with the same suffix written to the
	// same directory within one minute share a name and the later one overwrites the earlier.
	TimestampLayout = "02-01-2006_15:04"

	// UniqueTimestampLayout keeps the minute prefix so names still group and sort by minute.
	UniqueTimestampLayout = "02-01-2006_15:04:05.000"
)

type Artifact struct {
	Path      string
	Kind      string
	Source    string
	Content   []byte
	CreatedAt time.Time
}

func (a *Artifact) Sha256() string {
	sum := sha256.Sum256(a.Content)
	return strings.TrimPrefix(hexutil.Encode(sum[:]), "0x")
}

type ArtifactStoreConfig struct {
	// BaseDir is where the implicit working directory is created. Defaults to the process cwd.
	BaseDir string

	// UniqueNames appends sub-second precision and a random token to every name.
	UniqueNames bool

	// Manifest appends a row per artifact to <dir>/manifest.csv.
	Manifest bool
}

type ArtifactStore struct {
	config *ArtifactStoreConfig
	clock  clockwork.Clock
	logger *zap.Logger
}

func NewArtifactStore(cfg *ArtifactStoreConfig, clock clockwork.Clock, l *zap.Logger) *ArtifactStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ArtifactStore{
		config: cfg,
		clock:  clock,
		logger: l,
	}
}

// EnsureWorkingDirectory returns baseDir/tmp, creating it when absent.
func EnsureWorkingDirectory(baseDir string) (string, error) {
	workingDir := filepath.Join(baseDir, WorkingDirectoryName)

	stat, err := os.Stat(workingDir)
	if err == nil {
		if !stat.IsDir() {
			return "", abiErrors.New("ensure_working_directory", abiErrors.ErrIO, fmt.Sprintf("%s exists and is not a directory", workingDir))
		}
		return workingDir, nil
	}
	if !os.IsNotExist(err) {
		return "", abiErrors.Wrap("ensure_working_directory", abiErrors.ErrIO, err)
	}
	if err := os.Mkdir(workingDir, 0755); err != nil && !os.IsExist(err) {
		return "", abiErrors.Wrapf("ensure_working_directory", abiErrors.ErrIO, err, "could not create %s", workingDir)
	}
	return workingDir, nil
}

func (as *ArtifactStore) baseDir() (string, error) {
	if as.config.BaseDir != "" {
		return as.config.BaseDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", abiErrors.Wrapf("build_output_path", abiErrors.ErrIO, err, "could not resolve current directory")
	}
	return cwd, nil
}

func (as *ArtifactStore) FileName(suffix string) string {
	now := as.clock.Now().UTC()
	if as.config.UniqueNames {
		token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		return fmt.Sprintf("%s_%s_%s", now.Format(UniqueTimestampLayout), token, suffix)
	}
	return fmt.Sprintf("%s_%s", now.Format(TimestampLayout), suffix)
}

// BuildOutputPath returns explicitDir/<timestamp>_<suffix>, or the same name inside the working
// directory when explicitDir is empty.
func (as *ArtifactStore) BuildOutputPath(explicitDir string, suffix string) (string, error) {
	dir := explicitDir
	if dir == "" {
		base, err := as.baseDir()
		if err != nil {
			return "", err
		}
		if dir, err = EnsureWorkingDirectory(base); err != nil {
			return "", err
		}
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return "", abiErrors.Wrapf("build_output_path", abiErrors.ErrIO, err, "could not create output directory %s", dir)
	}

	return filepath.Join(dir, as.FileName(suffix)), nil
}

// Write creates or truncates path and writes content fully before returning.
func (as *ArtifactStore) Write(path string, content []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return abiErrors.Wrapf("write", abiErrors.ErrIO, err, "could not create %s", path)
	}

	fd := bufio.NewWriter(file)
	if _, err := fd.Write(content); err != nil {
		_ = file.Close()
		return abiErrors.Wrapf("write", abiErrors.ErrIO, err, "could not write %s", path)
	}
	if err := fd.Flush(); err != nil {
		_ = file.Close()
		return abiErrors.Wrapf("write", abiErrors.ErrIO, err, "could not flush %s", path)
	}
	if err := file.Close(); err != nil {
		return abiErrors.Wrapf("write", abiErrors.ErrIO, err, "could not close %s", path)
	}
	return nil
}

// Save places content under a timestamped name and records it in the manifest when enabled.
func (as *ArtifactStore) Save(explicitDir string, suffix string, source string, content []byte) (*Artifact, error) {
	path, err := as.BuildOutputPath(explicitDir, suffix)
	if err != nil {
		return nil, err
	}

	if err := as.Write(path, content); err != nil {
		as.logger.Sugar().Errorw("Failed to write artifact",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	artifact := &Artifact{
		Path:      path,
		Kind:      suffix,
		Source:    source,
		Content:   content,
		CreatedAt: as.clock.Now().UTC(),
	}
	as.logger.Sugar().Debugw("Wrote artifact",
		zap.String("path", path),
		zap.Int("bytes", len(content)),
	)

	if as.config.Manifest {
		if err := appendManifest(filepath.Dir(path), artifact); err != nil {
			as.logger.Sugar().Errorw("Failed to record artifact in manifest",
				zap.String("path", path),
				zap.Error(err),
			)
			return artifact, err
		}
	}
	return artifact, nil
}
