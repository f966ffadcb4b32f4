// Package paths keeps client-supplied paths inside the downloads directory.
//
//	path, err := paths.Within(downloadsDir, req.Path)
//	if errors.Is(err, paths.ErrOutsideRoot) {
//	    // reject
//	}
package paths
