// Package graphstat computes structural statistics over an overlay
// adjacency list: degree distribution, local clustering coefficients, and
// all-pairs shortest paths with the derived diameter and mean path length.
//
// The adjacency list is indexed by peer and assumed symmetric; self loops
// and duplicate entries are tolerated but skew the results.
package graphstat

import (
	"fmt"
	"io"
)

// Unreachable marks pairs with no connecting path in a distance matrix.
const Unreachable = int(^uint(0) >> 1)

// Degrees returns the degree of every peer.
func Degrees(adj [][]int) []int {
	degrees := make([]int, len(adj))
	for i, row := range adj {
		degrees[i] = len(row)
	}
	return degrees
}

// ClusteringCoefficients returns the local clustering coefficient for every
// peer: the fraction of ordered neighbor pairs that are themselves linked.
// Peers with fewer than two neighbors have no defined coefficient; the
// second return marks which entries are valid.
func ClusteringCoefficients(adj [][]int) ([]float64, []bool) {
	coeffs := make([]float64, len(adj))
	defined := make([]bool, len(adj))

	neighborSets := make([]map[int]struct{}, len(adj))
	for v, row := range adj {
		set := make(map[int]struct{}, len(row))
		for _, n := range row {
			set[n] = struct{}{}
		}
		neighborSets[v] = set
	}

	for v, row := range adj {
		degree := len(row)
		if degree <= 1 {
			continue
		}
		linked := 0
		for _, j := range row {
			for _, k := range adj[j] {
				if k == v {
					continue
				}
				if _, ok := neighborSets[v][k]; ok {
					linked++
				}
			}
		}
		coeffs[v] = float64(linked) / float64(degree*(degree-1))
		defined[v] = true
	}
	return coeffs, defined
}

// ShortestPaths computes all-pairs shortest path lengths with
// Floyd-Warshall in O(n^3). Disconnected pairs are Unreachable.
func ShortestPaths(adj [][]int) [][]int {
	n := len(adj)
	dist := make([][]int, n)
	for i := range dist {
		dist[i] = make([]int, n)
		for j := range dist[i] {
			if i == j {
				dist[i][j] = 0
			} else {
				dist[i][j] = Unreachable
			}
		}
	}
	for i, row := range adj {
		for _, j := range row {
			if i != j {
				dist[i][j] = 1
			}
		}
	}

	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			ik := dist[i][k]
			if ik == Unreachable {
				continue
			}
			for j := 0; j < n; j++ {
				if dist[k][j] == Unreachable {
					continue
				}
				if d := ik + dist[k][j]; d < dist[i][j] {
					dist[i][j] = d
				}
			}
		}
	}
	return dist
}

// Summary aggregates the structural statistics of one overlay.
type Summary struct {
	Peers int

	MinDegree  int
	MaxDegree  int
	MeanDegree float64

	// MeanClustering averages the local coefficients of peers with at
	// least two neighbors; DefinedClustering counts those peers.
	MeanClustering    float64
	DefinedClustering int

	// Diameter is the longest shortest path between connected pairs, and
	// MeanPathLength the average over all ordered pairs. Connected is
	// false when some pair has no path, in which case both cover only
	// the reachable pairs.
	Diameter       int
	MeanPathLength float64
	Connected      bool
}

// Summarize computes the full statistics summary of an overlay. The
// all-pairs computation is cubic in the number of peers; for overlays in
// the tens of thousands run it offline.
func Summarize(adj [][]int) Summary {
	s := Summary{Peers: len(adj), Connected: true}
	if len(adj) == 0 {
		return s
	}

	degrees := Degrees(adj)
	s.MinDegree = degrees[0]
	total := 0
	for _, d := range degrees {
		if d < s.MinDegree {
			s.MinDegree = d
		}
		if d > s.MaxDegree {
			s.MaxDegree = d
		}
		total += d
	}
	s.MeanDegree = float64(total) / float64(len(degrees))

	coeffs, defined := ClusteringCoefficients(adj)
	sum := 0.0
	for v, ok := range defined {
		if ok {
			sum += coeffs[v]
			s.DefinedClustering++
		}
	}
	if s.DefinedClustering > 0 {
		s.MeanClustering = sum / float64(s.DefinedClustering)
	}

	dist := ShortestPaths(adj)
	pathSum, pairs := 0, 0
	for i := range dist {
		for j := range dist[i] {
			if i == j {
				continue
			}
			if dist[i][j] == Unreachable {
				s.Connected = false
				continue
			}
			if dist[i][j] > s.Diameter {
				s.Diameter = dist[i][j]
			}
			pathSum += dist[i][j]
			pairs++
		}
	}
	if pairs > 0 {
		s.MeanPathLength = float64(pathSum) / float64(pairs)
	}
	return s
}

// WriteReport writes a summary as a human-readable report.
func WriteReport(w io.Writer, s Summary) error {
	_, err := fmt.Fprintf(w,
		"peers:\t%d\n"+
			"degree:\tmin %d  max %d  mean %.3f\n"+
			"clustering:\tmean %.4f over %d peers\n"+
			"diameter:\t%d\n"+
			"mean path:\t%.3f\n"+
			"connected:\t%v\n",
		s.Peers,
		s.MinDegree, s.MaxDegree, s.MeanDegree,
		s.MeanClustering, s.DefinedClustering,
		s.Diameter,
		s.MeanPathLength,
		s.Connected,
	)
	return err
}
