package cli

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cloudfoundry/bytefmt"
	"github.com/sirupsen/logrus"
	"github.com/sisatech/tablewriter"
	"github.com/spf13/cobra"
)

var (
	release = "0.0.0"
	commit  = ""
	date    = "Thu, 01 Jan 1970 00:00:00 +0000"
)

// Each command executed may have a error message and status code
var errorStatusCode int
var errorStatusMessage error

// SetError sets the global variables for when the process exits to display accordingly
func SetError(err error, code int) {
	errorStatusCode = code
	errorStatusMessage = err
}

// HandleErrors reports the error recorded by SetError, if any, and exits
// with its status code. It is meant to be deferred by main.
func HandleErrors() {
	if errorStatusCode == 0 {
		return
	}
	if errorStatusMessage != nil {
		logrus.Error(errorStatusMessage.Error())
	}
	os.Exit(errorStatusCode)
}

// NumbersMode determines which numbers format a PrintableSize should render to.
var NumbersMode int

// SetNumbersMode parses s and sets NumbersMode accordingly.
func SetNumbersMode(s string) error {
	s = strings.ToLower(s)
	s = strings.TrimSpace(s)
	switch s {
	case "", "short":
		NumbersMode = 0
	case "dec", "decimal":
		NumbersMode = 1
	case "hex", "hexadecimal":
		NumbersMode = 2
	default:
		return fmt.Errorf("numbers mode must be one of 'dec', 'hex', or 'short'")
	}
	return nil
}

// SetNumberModeFlagCMD : Will SetNumberMode to the value of the cmd flag 'numbers'
func SetNumberModeFlagCMD(cmd *cobra.Command) error {
	numbers, err := cmd.Flags().GetString("numbers")
	if err != nil {
		return err
	}

	err = SetNumbersMode(numbers)
	if err != nil {
		return fmt.Errorf("couldn't parse value of --numbers: %v", err)
	}

	return nil
}

// PrintableSize is a byte count whose string form follows NumbersMode.
type PrintableSize int64

// String returns a string representation of the PrintableSize, formatted according to the global NumbersMode.
func (c PrintableSize) String() string {
	switch NumbersMode {
	case 0:
		if c <= 0 {
			return fmt.Sprintf("%d", int64(c))
		}
		return bytefmt.ByteSize(uint64(c))
	case 1:
		return fmt.Sprintf("%d", int64(c))
	case 2:
		return fmt.Sprintf("%#x", int64(c))
	default:
		panic("invalid NumbersMode")
	}
}

// PlainTable prints data in a grid, handling alignment automatically. The
// first row is the header.
func PlainTable(w io.Writer, vals [][]string) {
	if len(vals) == 0 {
		panic(errors.New("no rows provided"))
	}

	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetHeader(vals[0])
	for i := 1; i < len(vals); i++ {
		table.Append(vals[i])
	}

	table.Render()
}
