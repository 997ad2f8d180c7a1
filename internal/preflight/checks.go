package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"ytscribe/internal/config"
	"ytscribe/internal/runner"
	"ytscribe/internal/services/whisper"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least minMiB
// mebibytes available. A threshold of zero or less disables the check.
func CheckFreeSpace(path string, minMiB int64) Result {
	const name = "Free space"
	if minMiB <= 0 {
		return Result{Name: name, Passed: true, Detail: "check disabled"}
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	availMiB := int64(stat.Bavail) * stat.Bsize / (1024 * 1024)
	if availMiB < minMiB {
		return Result{Name: name, Detail: fmt.Sprintf("%d MiB available, %d MiB required", availMiB, minMiB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d MiB available", availMiB)}
}

// CheckEngine verifies the Whisper module imports cleanly in the configured
// Python environment. It uses a 60-second timeout; a cold interpreter on a
// busy machine can take a while.
func CheckEngine(ctx context.Context, cfg *config.Config, observer runner.Observer) Result {
	const name = "Speech engine"
	client, err := whisper.New(whisper.Config{
		Python:     cfg.Tools.Python,
		ProjectDir: cfg.Tools.WhisperProjectDir,
	})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	if err := client.EnsureAvailable(checkCtx, observer); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "whisper importable"}
}
