package main

import "os"

// createFile wraps os.Create so command implementations don't each need
// their own import of "os" just for this one call.
func createFile(path string) (*os.File, error) {
	return os.Create(path)
}
