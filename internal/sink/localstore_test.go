package sink

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func readObject(t *testing.T, store *LocalStore, bucket, key string) []byte {
	t.Helper()
	data, err := os.ReadFile(store.objectPath(bucket, key))
	require.NoError(t, err)
	return data
}

func listObjects(t *testing.T, store *LocalStore, bucket, prefix string) []string {
	t.Helper()
	root := store.bucketPath(bucket)
	var keys []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if key := filepath.ToSlash(rel); strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	sort.Strings(keys)
	return keys
}
