package download

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// tempPattern is the os.CreateTemp pattern of in-progress downloads. It is
// short and fixed so that any destination name that fits in a directory also
// leaves room for its temporary file.
const tempPattern = ".passportphoto-*.part"

// SaveStream copies r into the file at destPath. The data is first written to
// a temporary file in the same directory and then renamed into place, so
// destPath either keeps its previous content or holds the complete stream.
// An existing file at destPath is replaced. The directory must already exist.
// Cancellation is the reader's business; an http response body stops once its
// request context is done.
func SaveStream(r io.Reader, destPath string) error {
	dir := filepath.Dir(destPath)

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	// Remove the temporary file unless it was successfully renamed.
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return err
	}

	err = tmp.Close()
	if err != nil {
		return err
	}

	err = os.Chmod(tmpPath, 0644)
	if err != nil {
		return err
	}

	err = os.Rename(tmpPath, destPath)
	if err != nil {
		return err
	}
	committed = true

	log.Debugf("saved %d bytes: %s", n, destPath)
	return nil
}
