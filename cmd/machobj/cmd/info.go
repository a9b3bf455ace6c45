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
	"os"
	"runtime"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/blacktop/machobj/internal/commands/dump"
	"github.com/blacktop/machobj/internal/config"
	"github.com/blacktop/machobj/internal/magic"
)

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().VarP(new(archValue), "arch", "a", "Which architecture to use for fat/universal MachO")
	infoCmd.RegisterFlagCompletionFunc("arch", completeArch)
	infoCmd.Flags().BoolP("header", "d", false, "Print the mach header")
	infoCmd.Flags().BoolP("loads", "l", false, "Print the load commands")
	infoCmd.Flags().BoolP("sections", "s", false, "Print sections")
	infoCmd.Flags().BoolP("symbols", "n", false, "Print symbols")
	infoCmd.Flags().BoolP("relocs", "r", false, "Print relocations")
	infoCmd.Flags().BoolP("libs", "L", false, "Print linked libraries")
	infoCmd.Flags().BoolP("dice", "D", false, "Print data-in-code entries")
	infoCmd.Flags().Bool("demangle", false, "Demangle symbol names")
	infoCmd.Flags().BoolP("json", "j", false, "Print as JSON")
	infoCmd.Flags().IntP("jobs", "J", 0, "Number of files to parse at once (default: one per CPU)")

	for _, name := range []string{"arch", "header", "loads", "sections", "symbols", "relocs", "libs", "dice", "demangle", "json", "jobs"} {
		viper.BindPFlag("info."+name, infoCmd.Flags().Lookup(name))
	}

	infoCmd.MarkZshCompPositionalArgumentFile(1)
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:           "info <macho>...",
	Aliases:       []string{"i"},
	Short:         "Explore Mach-O object files",
	Args:          cobra.MinimumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.LoadConfig()
		if err != nil {
			return err
		}
		ic := conf.Info

		jobs := ic.Jobs
		if jobs == 0 {
			jobs = runtime.NumCPU()
		}

		files := make([][]dump.Slice, len(args))
		var g errgroup.Group
		g.SetLimit(jobs)
		for i, path := range args {
			g.Go(func() error {
				if ok, err := magic.IsMachO(path); !ok {
					log.WithError(err).WithField("path", path).Warn("skipping")
					return nil
				}
				slices, err := dump.OpenSlices(path)
				if err != nil {
					return err
				}
				log.WithField("path", path).Debugf("parsed %d slice(s)", len(slices))
				files[i], err = dump.FilterArch(slices, ic.Arch)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		dconf := &dump.Config{
			Header:   ic.Header,
			Loads:    ic.Loads,
			Sections: ic.Sections,
			Symbols:  ic.Symbols,
			Relocs:   ic.Relocs,
			Libs:     ic.Libs,
			Dice:     ic.Dice,
			Demangle: ic.Demangle,
		}

		if ic.JSON {
			var sums []*dump.Summary
			for _, slices := range files {
				for _, s := range slices {
					sum, err := dump.Summarize(s, dconf)
					if err != nil {
						return fmt.Errorf("%s: %w", s.Name(len(slices) > 1 || s.Offset != 0), err)
					}
					sums = append(sums, sum)
				}
			}
			return dump.JSON(os.Stdout, sums)
		}

		first := true
		for _, slices := range files {
			for _, s := range slices {
				if !first {
					fmt.Println()
				}
				first = false
				if err := dump.Text(os.Stdout, s, len(slices) > 1 || s.Offset != 0, dconf); err != nil {
					return err
				}
			}
		}
		return nil
	},
}
