// Package topology builds overlays from edge-list datasets and from
// synthetic generators. The dataset format is one undirected edge per
// line, the two peer identifiers separated by a comma:
//
//	alice,bob
//	bob,carol
//
// Identifiers are arbitrary strings; peers are created on first mention.
package topology

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/smallworldnet/darksim"
)

// ErrMalformedEdge indicates a dataset line that is not two
// comma-separated identifiers.
var ErrMalformedEdge = errors.New("malformed edge line")

// Edge is one undirected link between two named peers.
type Edge struct {
	A, B string
}

// ParseEdgeList reads a comma-separated edge list. Blank lines and lines
// starting with '#' are skipped.
func ParseEdgeList(r io.Reader) ([]Edge, error) {
	var edges []Edge
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		a, b, ok := strings.Cut(line, ",")
		a, b = strings.TrimSpace(a), strings.TrimSpace(b)
		if !ok || a == "" || b == "" {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedEdge, lineNo, line)
		}
		edges = append(edges, Edge{A: a, B: b})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read edge list: %w", err)
	}
	return edges, nil
}

// Build registers every peer named in edges with the engine, on first
// mention, and links each edge symmetrically. Self edges and repeated
// edges are tolerated and collapse to nothing. It returns the mapping
// from dataset identifier to peer ID.
func Build(engine *darksim.Engine, edges []Edge) (map[string]darksim.PeerID, error) {
	ids := make(map[string]darksim.PeerID)
	lookup := func(name string) (darksim.PeerID, error) {
		if id, ok := ids[name]; ok {
			return id, nil
		}
		id, err := engine.AddPeer(name)
		if err != nil {
			return darksim.NoPeer, fmt.Errorf("add peer %q: %w", name, err)
		}
		ids[name] = id
		return id, nil
	}

	for _, e := range edges {
		a, err := lookup(e.A)
		if err != nil {
			return nil, err
		}
		b, err := lookup(e.B)
		if err != nil {
			return nil, err
		}
		if a == b {
			continue
		}
		if err := engine.Link(a, b); err != nil {
			return nil, fmt.Errorf("link %q-%q: %w", e.A, e.B, err)
		}
	}
	return ids, nil
}

// BuildFromReader parses an edge list and builds the overlay in one step.
func BuildFromReader(engine *darksim.Engine, r io.Reader) (map[string]darksim.PeerID, error) {
	edges, err := ParseEdgeList(r)
	if err != nil {
		return nil, err
	}
	return Build(engine, edges)
}

// Ring generates the edge list of an n-peer ring, the smallest overlay on
// which routing and swapping are meaningful. Peers are named p0..p(n-1).
func Ring(n int) []Edge {
	edges := make([]Edge, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, Edge{
			A: fmt.Sprintf("p%d", i),
			B: fmt.Sprintf("p%d", (i+1)%n),
		})
	}
	return edges
}
