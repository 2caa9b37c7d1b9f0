package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vorteil/vfsr/pkg/xfs"
)

var xflagNames = []struct {
	flag uint32
	name string
}{
	{xfs.XFlagRealtime, "realtime"},
	{xfs.XFlagPrealloc, "prealloc"},
	{xfs.XFlagImmutable, "immutable"},
	{xfs.XFlagAppend, "append"},
	{xfs.XFlagSync, "sync"},
	{xfs.XFlagNoAtime, "noatime"},
	{xfs.XFlagNoDump, "nodump"},
	{xfs.XFlagExtSize, "extsize"},
	{xfs.XFlagNoDefrag, "nodefrag"},
	{xfs.XFlagFilestream, "filestream"},
	{xfs.XFlagDax, "dax"},
	{xfs.XFlagCowExtSize, "cowextsize"},
	{xfs.XFlagHasAttr, "hasattr"},
}

func xflagString(x uint32) string {
	var names []string
	for _, f := range xflagNames {
		if x&f.flag != 0 {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

func openForInspection(path string) (filesystem, *os.File, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	mount := flagMount
	if mount == "" {
		mount = filepath.Dir(path)
	}

	fs, err := openFilesystem(mount, cfg.TempPrefix, log)
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrapf(err, "failed to open filesystem at %s", mount)
	}

	return fs, f, nil

}

var statCmd = &cobra.Command{
	Use:   "stat FILE...",
	Short: "Print the inode metadata the defragmenter works from",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := SetNumberModeFlagCMD(cmd)
		if err != nil {
			SetError(err, 2)
			return
		}

		rows := [][]string{{"FILE", "INODE", "SIZE", "EXTENTS", "ATTR EXTENTS", "FORK OFFSET", "FLAGS"}}

		for _, path := range args {

			fs, f, err := openForInspection(path)
			if err != nil {
				SetError(err, 2)
				return
			}

			snap, err := fs.Snapshot(cmd.Context(), f)
			f.Close()
			fs.Close()
			if err != nil {
				SetError(errors.Wrapf(err, "failed to stat %s", path), 2)
				return
			}

			forkoff := "-"
			if snap.ForkOffsetReported {
				forkoff = strconv.Itoa(int(snap.ForkOffset))
			}

			rows = append(rows, []string{
				path,
				strconv.FormatUint(snap.Ino, 10),
				PrintableSize(snap.Size).String(),
				strconv.Itoa(int(snap.Extents)),
				strconv.Itoa(int(snap.AttrExtents)),
				forkoff,
				xflagString(snap.XFlags),
			})

		}

		PlainTable(cmd.OutOrStdout(), rows)
	},
}

var extentsCmd = &cobra.Command{
	Use:   "extents FILE",
	Short: "List the extents of a file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := SetNumberModeFlagCMD(cmd)
		if err != nil {
			SetError(err, 2)
			return
		}

		fs, f, err := openForInspection(args[0])
		if err != nil {
			SetError(err, 2)
			return
		}
		defer fs.Close()
		defer f.Close()

		extents, err := fs.Extents(f)
		if err != nil {
			SetError(errors.Wrapf(err, "failed to map %s", args[0]), 2)
			return
		}

		rows := [][]string{{"#", "LOGICAL", "PHYSICAL", "LENGTH", "FLAGS"}}
		for i, e := range extents {
			flags := ""
			if e.Unwritten() {
				flags = "unwritten"
			}
			rows = append(rows, []string{
				strconv.Itoa(i),
				PrintableSize(e.Logical).String(),
				PrintableSize(e.Physical).String(),
				PrintableSize(e.Length).String(),
				flags,
			})
		}

		PlainTable(cmd.OutOrStdout(), rows)
		fmt.Fprintf(cmd.OutOrStdout(), "%d extents, %d fragments\n", len(extents), xfs.CountFragments(extents))
	},
}

var geometryCmd = &cobra.Command{
	Use:   "geometry MOUNT",
	Short: "Print the geometry of a filesystem",
	Long: `Print the geometry of a mounted filesystem. With --image the argument is an
unmounted device or image file whose primary superblock is read instead.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := SetNumberModeFlagCMD(cmd)
		if err != nil {
			SetError(err, 2)
			return
		}

		var g xfs.Geometry

		if flagImage {
			g, err = imageGeometry(args[0])
			if err != nil {
				SetError(err, 2)
				return
			}
		} else {
			fs, err := openFilesystem(args[0], cfg.TempPrefix, log)
			if err != nil {
				SetError(errors.Wrapf(err, "failed to open filesystem at %s", args[0]), 2)
				return
			}
			defer fs.Close()
			g = fs.Geometry()
		}

		PlainTable(cmd.OutOrStdout(), [][]string{
			{"PROPERTY", "VALUE"},
			{"block size", PrintableSize(g.BlockSize).String()},
			{"inode size", strconv.Itoa(int(g.InodeSize))},
			{"inode header", strconv.Itoa(g.HeaderSize())},
			{"max fork offset gap", strconv.Itoa(g.MaxForkOffsetGap())},
			{"attr2", strconv.FormatBool(g.Attr2())},
			{"v5", strconv.FormatBool(g.V5())},
			{"allocation groups", strconv.Itoa(int(g.AGCount))},
			{"data size", PrintableSize(int64(g.DataBlocks) * int64(g.BlockSize)).String()},
		})
	},
}

func imageGeometry(path string) (xfs.Geometry, error) {

	f, err := os.Open(path)
	if err != nil {
		return xfs.Geometry{}, err
	}
	defer f.Close()

	sb, err := xfs.ReadSuperBlock(f)
	if err != nil {
		return xfs.Geometry{}, errors.Wrapf(err, "failed to read %s", path)
	}

	return sb.Geometry(), nil

}
