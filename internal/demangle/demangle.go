// Package demangle turns Itanium C++ symbol names into readable form.
package demangle

import (
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// Do demangles name. Mach-O prefixes C symbols with an underscore, so
// "__Z3foov" is treated as "_Z3foov". Names that are not mangled are
// returned unchanged. noParams drops the parameter list and noTemplate the
// template arguments.
func Do(name string, noParams, noTemplate bool) string {
	var opts []demangle.Option
	if noParams {
		opts = append(opts, demangle.NoParams)
	}
	if noTemplate {
		opts = append(opts, demangle.NoTemplateParams)
	}

	trimmed := name
	if strings.HasPrefix(name, "__Z") || strings.HasPrefix(name, "___Z") {
		trimmed = name[1:]
	}
	out, err := demangle.ToString(trimmed, opts...)
	if err != nil {
		return name
	}
	return out
}
