package optimizer

// Dinic max-flow over the bipartite staff/slot graph. Used to decide
// whether an exact-degree assignment exists for a given count vector and
// to extract one when it does.

type flowEdge struct {
	to, rev, cap int
}

type flowNet struct {
	adj [][]flowEdge
	lvl []int
	it  []int
}

func newFlowNet(n int) *flowNet {
	return &flowNet{
		adj: make([][]flowEdge, n),
		lvl: make([]int, n),
		it:  make([]int, n),
	}
}

func (f *flowNet) addEdge(from, to, capacity int) {
	f.adj[from] = append(f.adj[from], flowEdge{to: to, rev: len(f.adj[to]), cap: capacity})
	f.adj[to] = append(f.adj[to], flowEdge{to: from, rev: len(f.adj[from]) - 1, cap: 0})
}

func (f *flowNet) bfs(source, sink int) bool {
	for i := range f.lvl {
		f.lvl[i] = -1
	}
	queue := []int{source}
	f.lvl[source] = 0
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, e := range f.adj[v] {
			if e.cap > 0 && f.lvl[e.to] < 0 {
				f.lvl[e.to] = f.lvl[v] + 1
				queue = append(queue, e.to)
			}
		}
	}
	return f.lvl[sink] >= 0
}

func (f *flowNet) dfs(v, sink, pushed int) int {
	if v == sink {
		return pushed
	}
	for ; f.it[v] < len(f.adj[v]); f.it[v]++ {
		e := &f.adj[v][f.it[v]]
		if e.cap <= 0 || f.lvl[e.to] != f.lvl[v]+1 {
			continue
		}
		got := f.dfs(e.to, sink, min(pushed, e.cap))
		if got > 0 {
			e.cap -= got
			f.adj[e.to][e.rev].cap += got
			return got
		}
	}
	return 0
}

func (f *flowNet) maxFlow(source, sink int) int {
	flow := 0
	for f.bfs(source, sink) {
		for i := range f.it {
			f.it[i] = 0
		}
		for {
			pushed := f.dfs(source, sink, 1<<30)
			if pushed == 0 {
				break
			}
			flow += pushed
		}
	}
	return flow
}

// feasibleAssignment builds the exact-degree bipartite assignment for one
// count vector: every staff member of grade g supplies exactly counts[g]
// units, every slot consumes exactly its required count, and only allowed
// edges carry flow. Returns nil when no such assignment exists.
func (m *Model) feasibleAssignment(counts CountVector) [][]bool {
	nStaff := len(m.Staff)
	nSlots := len(m.Slots)

	// node layout: 0 source, 1..nStaff staff, nStaff+1..nStaff+nSlots slots, last sink
	source := 0
	sink := nStaff + nSlots + 1
	net := newFlowNet(sink + 1)

	gradeIdx := make(map[string]int, len(m.Grades))
	for g, grade := range m.Grades {
		gradeIdx[grade] = g
	}

	for i := 0; i < nStaff; i++ {
		net.addEdge(source, 1+i, counts[gradeIdx[m.GradeOf[i]]])
		for j := 0; j < nSlots; j++ {
			if m.Allowed[i][j] {
				net.addEdge(1+i, 1+nStaff+j, 1)
			}
		}
	}
	for j := 0; j < nSlots; j++ {
		net.addEdge(1+nStaff+j, sink, m.Slots[j].Required)
	}

	if net.maxFlow(source, sink) != m.Demand {
		return nil
	}

	assigned := make([][]bool, nStaff)
	for i := range assigned {
		assigned[i] = make([]bool, nSlots)
	}
	for i := 0; i < nStaff; i++ {
		for _, e := range net.adj[1+i] {
			j := e.to - 1 - nStaff
			if j >= 0 && j < nSlots && e.cap == 0 {
				// saturated forward edge means staff i covers slot j
				assigned[i][j] = true
			}
		}
	}
	return assigned
}
