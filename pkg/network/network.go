package network

import (
	"github.com/chazu/lath/pkg/plan"
)

// Network is a maximal set of walls transitively connected through
// shared endpoints, together with the connection points that lie inside
// it.
type Network struct {
	Walls  []*plan.Wall
	Points []*ConnectionPoint
}

// Merged reports whether the network contains more than one wall, i.e.
// whether its mesh is the result of boolean unions.
func (n *Network) Merged() bool {
	return len(n.Walls) > 1
}

// WallIDs returns the member wall ids in network order.
func (n *Network) WallIDs() []string {
	ids := make([]string, len(n.Walls))
	for i, w := range n.Walls {
		ids[i] = w.ID
	}
	return ids
}

// Contains reports whether the wall with the given id is a member.
func (n *Network) Contains(wallID string) bool {
	for _, w := range n.Walls {
		if w.ID == wallID {
			return true
		}
	}
	return false
}

// Analysis is the full derived topology of a wall collection.
type Analysis struct {
	Points   []*ConnectionPoint
	Networks []*Network
}

// Analyze discovers connection points, classifies them, annotates each
// wall's neighbor records, and partitions the walls into networks.
func Analyze(walls []*plan.Wall, tol, collinearThreshold float64) *Analysis {
	points := ConnectionPoints(walls, tol, collinearThreshold)
	annotate(walls, points)
	return &Analysis{
		Points:   points,
		Networks: Partition(walls, points),
	}
}

// Partition groups walls into disjoint networks. Two walls are adjacent
// iff they share a connection point; the traversal is an iterative flood
// fill with an explicit stack so deep chains cannot exhaust the call
// stack. Every wall lands in exactly one network; a wall with no
// neighbors forms a singleton.
func Partition(walls []*plan.Wall, points []*ConnectionPoint) []*Network {
	adj := make(map[string][]string, len(walls))
	for _, cp := range points {
		for _, a := range cp.Walls {
			for _, b := range cp.Walls {
				if a != b {
					adj[a.ID] = append(adj[a.ID], b.ID)
				}
			}
		}
	}

	byID := make(map[string]*plan.Wall, len(walls))
	order := make(map[string]int, len(walls))
	for i, w := range walls {
		byID[w.ID] = w
		order[w.ID] = i
	}

	visited := make(map[string]bool, len(walls))
	var networks []*Network

	for _, seed := range walls {
		if visited[seed.ID] {
			continue
		}
		var member []string
		stack := []string{seed.ID}
		visited[seed.ID] = true
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			member = append(member, id)
			for _, nb := range adj[id] {
				if !visited[nb] {
					visited[nb] = true
					stack = append(stack, nb)
				}
			}
		}

		// Keep the original wall order within the network so rebuilds
		// union volumes in a deterministic sequence.
		sortByOrder(member, order)
		net := &Network{}
		for _, id := range member {
			net.Walls = append(net.Walls, byID[id])
		}
		networks = append(networks, net)
	}

	assignPoints(networks, points)
	return networks
}

// annotate rewrites every wall's Connections from the current points.
func annotate(walls []*plan.Wall, points []*ConnectionPoint) {
	for _, w := range walls {
		w.Connections = nil
	}
	for _, cp := range points {
		for _, w := range cp.Walls {
			for _, nb := range cp.Walls {
				if nb == w {
					continue
				}
				w.Connections = append(w.Connections, plan.Connection{
					Neighbor: nb.ID,
					Kind:     cp.Kind,
					End:      w.EndNear(cp.Position),
				})
			}
		}
	}
}

// assignPoints attaches each connection point to the network that owns
// its first wall. All walls at a point share a network by construction.
func assignPoints(networks []*Network, points []*ConnectionPoint) {
	for _, cp := range points {
		if len(cp.Walls) == 0 {
			continue
		}
		for _, net := range networks {
			if net.Contains(cp.Walls[0].ID) {
				net.Points = append(net.Points, cp)
				break
			}
		}
	}
}

func sortByOrder(ids []string, order map[string]int) {
	// Insertion sort; networks are small.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && order[ids[j]] < order[ids[j-1]]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}
