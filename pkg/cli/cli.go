package cli

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vorteil/vfsr/pkg/elog"
	"github.com/vorteil/vfsr/pkg/vfsrconf"
)

var log elog.View = elog.Discard

var cfg *vfsrconf.Config

var (
	flagJSON    bool
	flagVerbose bool
	flagDebug   bool
	flagConfig  string
	flagFormat  string
	flagMount   string
	flagImage   bool
)

func InitializeCommands() {

	// setup logging across all commands
	RootCommand.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose output")
	RootCommand.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "enable debug output")
	RootCommand.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "enable json output")
	RootCommand.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default is $HOME/.vfsr.yaml)")

	RootCommand.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {

		logger := &elog.CLI{}

		var err error
		cfg, err = vfsrconf.Load(flagConfig, logger)
		if err != nil {
			return err
		}

		elog.IsJSON = flagJSON || cfg.JSON
		if elog.IsJSON {
			logger.DisableTTY = true
			logrus.SetFormatter(&logrus.JSONFormatter{})
		} else {
			logrus.SetFormatter(logger)
		}

		logrus.SetOutput(cmd.ErrOrStderr())
		logrus.SetLevel(logrus.TraceLevel)

		if flagDebug {
			logger.IsDebug = true
			logger.IsVerbose = true
		} else if flagVerbose {
			logger.IsVerbose = true
		}

		log = logger

		return nil
	}

	addDefragFlags(defragCmd)

	for _, c := range []*cobra.Command{statCmd, extentsCmd} {
		c.Flags().StringVarP(&flagMount, "mount", "m", "", "mount point of the filesystem (default: the directory of the file)")
		c.Flags().StringP("numbers", "n", "short", "Number printing format")
	}
	geometryCmd.Flags().StringP("numbers", "n", "short", "Number printing format")
	geometryCmd.Flags().BoolVar(&flagImage, "image", false, "read the superblock of an unmounted device or image")
	versionCmd.Flags().StringVarP(&flagFormat, "format", "f", "plain", "output format (json|plain)")

	RootCommand.AddCommand(defragCmd)
	RootCommand.AddCommand(statCmd)
	RootCommand.AddCommand(extentsCmd)
	RootCommand.AddCommand(geometryCmd)
	RootCommand.AddCommand(versionCmd)

	// Here we define some hidden top-level shortcuts.
	RootCommand.AddCommand(commandShortcut(defragCmd, "fsr"))
}

func commandShortcut(cmd *cobra.Command, use string) *cobra.Command {
	c := *cmd
	c.Use = use + cmd.Use[len(cmd.Name()):]
	c.Aliases = []string{}
	c.Hidden = true
	return &c
}

var RootCommand = &cobra.Command{
	Use:   "vfsr",
	Short: "Online defragmenter for XFS filesystems",
	Long: `vfsr rewrites fragmented files on a mounted XFS filesystem into contiguous
extents while they stay in place. Files are copied into a hidden replacement
inode whose extents are then swapped into the original by the kernel.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "View CLI version information",
	Long:  "View CLI version information",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {

		format, err := cmd.Flags().GetString("format")
		if err != nil {
			panic(err)
		}

		switch format {
		case "json", "", "plain":
			return nil
		default:
			return fmt.Errorf("invalid format '%s'", format)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {

		format, err := cmd.Flags().GetString("format")
		if err != nil {
			panic(err)
		}

		w := cmd.OutOrStdout()

		switch format {
		case "json":
			fmt.Fprintf(w, "{\n\t\"version\": \"%s\",\n\t\"ref\": \"%s\",\n\t\"released\": \"%s\"\n}\n",
				release, commit, date)
		default:
			fmt.Fprintf(w, "Version: %s\nRef: %s\nReleased: %s\n", release, commit, date)
		}

	},
}
