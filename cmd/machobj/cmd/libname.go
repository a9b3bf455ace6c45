/*
Copyright © 2018-2023 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/blacktop/machobj/pkg/macho"
)

func init() {
	rootCmd.AddCommand(libnameCmd)
}

// libnameCmd represents the libname command
var libnameCmd = &cobra.Command{
	Use:           "libname <path>...",
	Short:         "Guess the short name of a dylib or framework install path",
	Args:          cobra.MinimumNArgs(1),
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		for _, path := range args {
			sn, ok := macho.GuessLibraryShortName(path)
			if !ok {
				log.WithField("path", path).Warn("not a library install name")
				fmt.Println(path)
				continue
			}
			out := sn.Name
			if sn.Suffix != "" {
				out += " (suffix " + sn.Suffix + ")"
			}
			if sn.IsFramework {
				out += " [framework]"
			}
			fmt.Println(out)
		}
	},
}
