package format

import (
	"io"
	"strconv"

	"github.com/GriffinCanCode/storefetch/internal/shared/types"
)

// Files builds the dataset for resolved records. Table rows are numbered
// from 1, matching download --index.
func Files(files []types.FileDescriptor) Dataset {
	if files == nil {
		files = []types.FileDescriptor{}
	}

	table := [][]string{{"#", "NAME", "ARCH", "SIZE", "EXPIRES"}}
	records := [][]string{{"name", "url", "time", "size"}}
	for i, f := range files {
		arch := f.Arch()
		if arch == "" {
			arch = "-"
		}
		table = append(table, []string{strconv.Itoa(i + 1), f.Name, arch, f.Size, f.Time})
		records = append(records, []string{f.Name, f.URL, f.Time, f.Size})
	}

	return Dataset{Key: "files", Value: files, Table: table, Records: records}
}

// WriteFiles renders resolved records
func WriteFiles(w io.Writer, f Format, files []types.FileDescriptor) error {
	return Write(w, f, Files(files))
}
