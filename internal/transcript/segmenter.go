package transcript

// Segment groups raw lines into message blocks. A line whose normalized form
// matches the header pattern closes the current block and opens a new one;
// any other line continues the open block. Lines seen before the first header
// have no block to join and are dropped. A file with no header lines yields
// zero blocks.
func Segment(lines []string) []Block {
	var blocks []Block
	var current []string

	for _, line := range lines {
		if _, ok := MatchHeader(Normalize(line)); ok {
			if current != nil {
				blocks = append(blocks, Block{Lines: current})
			}
			current = []string{line}
			continue
		}
		if current != nil {
			current = append(current, line)
		}
	}
	if current != nil {
		blocks = append(blocks, Block{Lines: current})
	}

	return blocks
}
