package monitor

import "os"

// ResolveRoots filters a candidate root list down to the paths that currently
// exist, preserving order. Missing candidates are skipped silently — an
// absent mount point is normal, not an error. Read-only; the result is fixed
// for the run, roots are never added or removed afterwards.
func ResolveRoots(candidates []string) []string {
	roots := make([]string, 0, len(candidates))

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}

		roots = append(roots, path)
	}

	return roots
}
