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
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blacktop/machobj/pkg/object"
)

// archValue is a --arch flag that only accepts known architecture names.
type archValue string

var _ pflag.Value = (*archValue)(nil)

func (v *archValue) String() string { return string(*v) }
func (v *archValue) Type() string   { return "arch" }

func (v *archValue) Set(s string) error {
	if a, ok := object.ParseArch(s); !ok || a == object.ArchUnknown {
		return fmt.Errorf("unknown architecture %q (want one of %v)", s, archNames())
	}
	*v = archValue(s)
	return nil
}

func archNames() []string {
	var names []string
	for a := object.ArchX86; ; a++ {
		if _, ok := object.ParseArch(a.String()); !ok {
			break
		}
		names = append(names, a.String())
	}
	slices.Sort(names)
	return names
}

func completeArch(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return archNames(), cobra.ShellCompDirectiveNoFileComp
}
