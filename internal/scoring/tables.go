package scoring

// table is a score lookup indexed by a count. Counts past the end score as
// the last entry.
type table []int

func (that table) at(count int) int {
	if len(that) == 0 || count < 0 {
		return 0
	}
	if count >= len(that) {
		return that[len(that)-1]
	}
	return that[count]
}

type tables struct {
	naturalization  table
	monopolization  table
	diversification table
	lowestSpender   int
}

var (
	smallGameTables = tables{
		naturalization:  table{0, 1, 3, 6, 10},
		monopolization:  table{0, 0, 3, 6, 10, 10},
		diversification: table{0, 0, 0, 6, 10},
		lowestSpender:   6,
	}

	fivePlayerTables = tables{
		naturalization:  table{0, 3, 6, 10},
		monopolization:  table{0, 0, 6, 10, 16, 16},
		diversification: table{0, 0, 10, 15, 21, 21},
		lowestSpender:   7,
	}
)

func tablesFor(playerCount int) tables {
	if playerCount == 5 {
		return fivePlayerTables
	}
	return smallGameTables
}

// zeroBidRounds are the rounds in which a zero bid earns points.
const (
	firstZeroBidRound = 1
	lastZeroBidRound  = 5
	pointsPerZeroBid  = 2
)
