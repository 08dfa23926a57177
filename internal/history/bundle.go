package history

import "fmt"

// Bundle serializes the local line of history into a portable bundle
// file at dst. The bundle carries only our own branches, never fetched
// peer refs.
func (l *Log) Bundle(dst string) error {
	if err := l.run("bundle", "create", dst, "--branches"); err != nil {
		return fmt.Errorf("failed to bundle history: %w", err)
	}
	return nil
}

// FetchBundle imports another machine's bundle under refs/peers/<peer>,
// anchoring its history locally as tamper evidence without touching our
// own line.
func (l *Log) FetchBundle(path, peer string) error {
	refspec := fmt.Sprintf("+refs/heads/*:refs/peers/%s/*", peer)
	if err := l.run("fetch", "--quiet", path, refspec); err != nil {
		return fmt.Errorf("failed to fetch peer bundle %s: %w", peer, err)
	}
	return nil
}
