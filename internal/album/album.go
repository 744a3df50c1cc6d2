// Package album assembles the downloaded gallery into a single PDF contact
// sheet. It operates only on the output directory, after the download loop
// has finished.
package album

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	pdfcpu_api "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ztrue/tracerr"
)

var imageFileRegex = regexp.MustCompile(`\.(jpe?g|png)$`)

// Collect returns the image files in dir, sorted by name so album order is
// stable across runs.
func Collect(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() || !imageFileRegex.MatchString(entry.Name()) {
			continue
		}
		images = append(images, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(images)

	return images, nil
}

// Build writes a PDF containing every image, one per page. An existing PDF is
// only overwritten with force.
func Build(images []string, pdfPath string, force bool) error {
	if len(images) == 0 {
		return fmt.Errorf("no images to assemble")
	}

	if _, err := os.Stat(pdfPath); err == nil && !force {
		return fmt.Errorf("PDF %s already exists, use -f to overwrite", pdfPath)
	}

	conf := model.NewDefaultConfiguration()
	if err := pdfcpu_api.ImportImagesFile(images, pdfPath, nil, conf); err != nil {
		return tracerr.Wrap(err)
	}

	return nil
}
