// Package backup exports the planner's collections as JSON files into a
// local git repository, giving the last-write-wins store a durable history.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/conorfennell/studydesk/internal/repo"
	"github.com/conorfennell/studydesk/internal/storage"
)

// Snapshot writes every collection to dir as a pretty-printed JSON file and
// commits the result, initializing the repository on first use. It returns
// the commit hash.
func Snapshot(store *storage.Store, dir string, when time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory %s: %w", dir, err)
	}

	for _, key := range repo.CollectionKeys {
		raw, ok, err := store.Get(key)
		if err != nil {
			return "", fmt.Errorf("failed to read collection %s: %w", key, err)
		}
		if !ok {
			raw = []byte("[]")
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			// A corrupt value is still worth capturing verbatim.
			pretty.Reset()
			pretty.Write(raw)
		}
		pretty.WriteByte('\n')
		path := filepath.Join(dir, key+".json")
		if err := os.WriteFile(path, pretty.Bytes(), 0o644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	gitRepo, err := git.PlainOpen(dir)
	if err == git.ErrRepositoryNotExists {
		gitRepo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return "", fmt.Errorf("failed to open backup repo at %s: %w", dir, err)
	}

	worktree, err := gitRepo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree for %s: %w", dir, err)
	}

	if err := worktree.AddGlob("*.json"); err != nil {
		return "", fmt.Errorf("failed to stage snapshot files: %w", err)
	}

	hash, err := worktree.Commit(fmt.Sprintf("snapshot %s", when.Format(time.RFC3339)), &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  "studydesk",
			Email: "studydesk@localhost",
			When:  when,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return hash.String(), nil
}
