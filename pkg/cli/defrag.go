package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vorteil/vfsr/pkg/elog"
	"github.com/vorteil/vfsr/pkg/flag"
	"github.com/vorteil/vfsr/pkg/fsr"
	"github.com/vorteil/vfsr/pkg/vfsrconf"
	"github.com/vorteil/vfsr/pkg/xfs"
)

// filesystem is what the commands need from an open mount.
type filesystem interface {
	fsr.Filesystem
	Extents(h fsr.Handle) ([]xfs.Extent, error)
	Path() string
	Close() error
}

var openFilesystem = func(path, tempPrefix string, log elog.Logger) (filesystem, error) {
	m, err := fsr.OpenFilesystem(path, log)
	if err != nil {
		return nil, err
	}
	m.TempPrefix = tempPrefix
	return m, nil
}

var (
	defragMount              = flag.NewStringFlag("mount", "m", "mount point of the filesystem (default: the directory of the first file)", "", false, nil)
	defragMaxIterations      = flag.NewIntFlag("max-iterations", "", "attribute fork alignment attempts per file", fsr.DefaultMaxIterations, false, flag.AtLeast(1))
	defragMaxStalls          = flag.NewIntFlag("max-stalls", "", "alignment attempts without progress before giving up", fsr.DefaultMaxStalls, false, flag.AtLeast(1))
	defragForce              = flag.NewBoolFlag("force", "", "repack files even if they are already contiguous", false, false)
	defragNoImprovementCheck = flag.NewBoolFlag("no-improvement-check", "", "swap even if the copy is no less fragmented", false, false)
	defragProgress           = flag.NewBoolFlag("progress", "", "show copy progress", false, false)
	defragJobs               = flag.NewIntFlag("jobs", "J", "number of files to repack at once", 1, false, flag.AtLeast(1))
)

var defragFlags = flag.FlagsList{
	&defragMount,
	&defragMaxIterations,
	&defragMaxStalls,
	&defragForce,
	&defragNoImprovementCheck,
	&defragProgress,
	&defragJobs,
}

func addDefragFlags(cmd *cobra.Command) {

	f := cmd.Flags()
	defragFlags.AddTo(f)

	err := vfsrconf.BindFlags(f, map[string]string{
		vfsrconf.KeyMaxIterations: defragMaxIterations.Key,
		vfsrconf.KeyMaxStalls:     defragMaxStalls.Key,
		vfsrconf.KeyForce:         defragForce.Key,
		vfsrconf.KeyJobs:          defragJobs.Key,
	})
	if err != nil {
		panic(err)
	}

}

var defragCmd = &cobra.Command{
	Use:   "defrag FILE...",
	Short: "Rewrite fragmented files into contiguous extents",
	Long: `Rewrite each FILE into as few extents as the filesystem allows. Files are
repacked one at a time unless --jobs is given; every file is handled start to
finish before its replacement inode is released.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return defragFlags.Validate()
	},
	Run: func(cmd *cobra.Command, args []string) {

		mount := defragMount.Value
		if mount == "" {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				SetError(err, 1)
				return
			}
			mount = filepath.Dir(abs)
		}

		fs, err := openFilesystem(mount, cfg.TempPrefix, log)
		if err != nil {
			SetError(errors.Wrapf(err, "failed to open filesystem at %s", mount), 2)
			return
		}
		defer fs.Close()

		opts := cfg.Options()
		opts.Progress = defragProgress.Value
		if defragNoImprovementCheck.Value {
			opts.RequireImprovement = false
		}

		r := fsr.NewRepacker(fs, opts, log)

		results := defragFiles(cmd.Context(), r, args, cfg.Jobs)

		failed := printSummary(cmd.OutOrStdout(), results)
		if failed > 0 {
			SetError(fmt.Errorf("%d of %d files could not be repacked", failed, len(args)), 3)
		}

	},
}

type defragResult struct {
	report *fsr.Report
	err    error
}

func defragFiles(ctx context.Context, r *fsr.Repacker, paths []string, jobs int) []defragResult {

	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]defragResult, len(paths))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i := range paths {
		i := i
		g.Go(func() error {

			rep, err := r.Repack(ctx, paths[i])
			switch {
			case err == nil:
			case errors.Is(err, fsr.ErrSkipped):
				log.Infof("%s: %v", paths[i], err)
			default:
				log.Errorf("%v", err)
			}

			mu.Lock()
			results[i] = defragResult{report: rep, err: err}
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return results

}

func printSummary(w io.Writer, results []defragResult) int {

	failed := 0
	rows := [][]string{{"FILE", "STATUS", "EXTENTS", "ALIGNMENT", "COPIED", "TIME"}}

	for _, res := range results {

		rep := res.report
		if rep == nil {
			rep = new(fsr.Report)
		}

		status := "ok"
		switch {
		case res.err == nil:
		case errors.Is(res.err, fsr.ErrSkipped):
			status = "skipped: " + rep.Skipped
		default:
			failed++
			status = "failed"
			if kind, ok := fsr.KindOf(res.err); ok {
				status += ": " + kind.Error()
			}
		}

		extents := strconv.Itoa(rep.ExtentsBefore)
		if res.err == nil {
			extents += " -> " + strconv.Itoa(rep.ExtentsAfter)
		}

		alignment := ""
		if rep.Align.Iterations > 0 || rep.Align.Creations > 0 || rep.Align.Result != fsr.Matched {
			alignment = rep.Align.String()
		}

		rows = append(rows, []string{
			rep.Path,
			status,
			extents,
			alignment,
			PrintableSize(rep.BytesCopied).String(),
			rep.Duration.Round(time.Millisecond).String(),
		})

	}

	PlainTable(w, rows)

	return failed

}
