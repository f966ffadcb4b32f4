package format

import (
	"strconv"
	"strings"

	"github.com/GriffinCanCode/storefetch/internal/providers/download"
	"github.com/GriffinCanCode/storefetch/internal/providers/installer"
	"github.com/dustin/go-humanize"
)

const timeLayout = "2006-01-02 15:04"

// Packages builds the dataset for the downloads library
func Packages(pkgs []download.Package) Dataset {
	if pkgs == nil {
		pkgs = []download.Package{}
	}

	table := [][]string{{"NAME", "ARCH", "SIZE", "MODIFIED"}}
	records := [][]string{{"name", "path", "arch", "size", "modified"}}
	for _, p := range pkgs {
		arch := p.Arch
		if arch == "" {
			arch = "-"
		}
		table = append(table, []string{p.Name, arch, humanize.IBytes(uint64(max(p.Size, 0))), p.ModTime.Format(timeLayout)})
		records = append(records, []string{p.Name, p.Path, p.Arch, strconv.FormatInt(p.Size, 10), p.ModTime.UTC().Format("2006-01-02T15:04:05Z")})
	}

	return Dataset{Key: "packages", Value: pkgs, Table: table, Records: records}
}

// PackageInfo builds a field/value dataset for one inspected package
func PackageInfo(info installer.PackageInfo) Dataset {
	rows := [][]string{
		{"path", info.Path},
		{"kind", info.Kind},
		{"arch", orDash(info.Arch)},
		{"mime", info.MIME},
		{"bundle", strconv.FormatBool(info.Bundle)},
	}
	if id := info.Identity; id != nil {
		rows = append(rows,
			[]string{"name", id.Name},
			[]string{"version", id.Version},
			[]string{"publisher", id.Publisher},
		)
		if id.Architecture != "" {
			rows = append(rows, []string{"architecture", id.Architecture})
		}
	}
	if len(info.Architectures) > 0 {
		rows = append(rows, []string{"architectures", strings.Join(info.Architectures, ",")})
	}

	return Dataset{
		Key:     "package",
		Value:   info,
		Table:   append([][]string{{"FIELD", "VALUE"}}, rows...),
		Records: append([][]string{{"field", "value"}}, rows...),
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
