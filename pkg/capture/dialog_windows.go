//go:build windows

package capture

import (
	"fmt"

	"github.com/harry1453/go-common-file-dialog/cfd"
	"github.com/harry1453/go-common-file-dialog/cfdutil"
)

// PickPhotoFile opens the native Windows file dialog filtered to the image
// formats the pipeline can decode.
func PickPhotoFile() (string, error) {
	path, err := cfdutil.ShowOpenFileDialog(cfd.DialogConfig{
		Title: "Choose a photo",
		FileFilters: []cfd.FileFilter{
			{
				DisplayName: "Photos (*.jpg, *.jpeg, *.png)",
				Pattern:     "*.jpg;*.jpeg;*.png",
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("file dialog: %w", err)
	}
	return path, nil
}
