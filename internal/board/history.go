package board

// historyNode is one entry of a position's move record. Nodes are never
// modified once linked, so clones can share a tail safely.
type historyNode struct {
	uci  string
	san  string
	prev *historyNode
	n    int
}

func (h *historyNode) push(uci, san string) *historyNode {
	n := 1
	if h != nil {
		n = h.n + 1
	}
	return &historyNode{uci: uci, san: san, prev: h, n: n}
}

func (h *historyNode) len() int {
	if h == nil {
		return 0
	}
	return h.n
}

// collect walks the list and returns the chosen field oldest first.
func (h *historyNode) collect(field func(*historyNode) string) []string {
	out := make([]string, h.len())
	for i, node := len(out)-1, h; node != nil; i, node = i-1, node.prev {
		out[i] = field(node)
	}
	return out
}

// Plies returns the number of half-moves recorded through Play.
func (p *Position) Plies() int {
	return p.history.len()
}

// UCIHistory returns the recorded moves in coordinate notation, oldest first.
func (p *Position) UCIHistory() []string {
	return p.history.collect(func(n *historyNode) string { return n.uci })
}

// SANHistory returns the recorded moves in short algebraic notation, oldest first.
func (p *Position) SANHistory() []string {
	return p.history.collect(func(n *historyNode) string { return n.san })
}

// LastMove returns the most recently recorded move, or NoMove.
func (p *Position) LastMove() Move {
	if p.history == nil {
		return NoMove
	}
	m, err := ParseMove(p.history.uci)
	if err != nil {
		return NoMove
	}
	return m
}
