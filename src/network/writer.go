package network

import (
	"bufio"
	"io"
)

// WriteTSV writes the header and then one line per edge received, in arrival order, until the channel is closed
// it returns the number of edges written
func WriteTSV(w io.Writer, edges <-chan *Edge) (int, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return 0, err
	}
	count := 0
	for edge := range edges {
		if _, err := bw.WriteString(edge.Line() + "\n"); err != nil {
			return count, err
		}
		count++
	}
	return count, bw.Flush()
}
