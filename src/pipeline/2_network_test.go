package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/will-rowe/cdrnet/src/network"
)

// runNetworkPipeline is a test helper to run the net command pipeline
func runNetworkPipeline(info *Info) *EdgeWriter {
	recordLoader := NewRecordLoader(info)
	indexBuilder := NewIndexBuilder(info)
	networkBuilder := NewNetworkBuilder(info)
	edgeWriter := NewEdgeWriter(info)
	recordLoader.Connect(info.InputFile)
	indexBuilder.Connect(recordLoader)
	networkBuilder.Connect(indexBuilder)
	edgeWriter.Connect(networkBuilder)
	netPipeline := NewPipeline()
	netPipeline.AddProcesses(recordLoader, indexBuilder, networkBuilder, edgeWriter)
	netPipeline.Run()
	return edgeWriter
}

func TestNetworkPipeline(t *testing.T) {
	info := testParameters(t)
	edgeWriter := runNetworkPipeline(info)
	assert.Equal(t, len(expectedEdges), edgeWriter.NumEdges())

	data, err := os.ReadFile(info.Net.OutFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, len(expectedEdges)+1)
	assert.Equal(t, network.Header, lines[0])

	// edges arrive in worker completion order, so compare them as a set
	got := append([]string{}, lines[1:]...)
	want := append([]string{}, expectedEdges...)
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)

	collection := info.GetCollection()
	require.NotNil(t, collection)
	assert.Len(t, collection.Records, 5)
	assert.Equal(t, 5, collection.Index.Len())
}

func TestNetworkPipelineSingleProcessor(t *testing.T) {
	info := testParameters(t)
	info.NumProc = 1
	runNetworkPipeline(info)
	data, err := os.ReadFile(info.Net.OutFile)
	require.NoError(t, err)
	for _, edge := range expectedEdges {
		assert.Contains(t, string(data), edge+"\n")
	}
}

func TestNetworkPipelineNoEdges(t *testing.T) {
	info := testParameters(t)
	info.Constraint.MaxSubstitutions = 0
	info.Constraint.MaxInsertions = 0
	info.Constraint.MaxDeletions = 0
	info.Net.PlotFile = filepath.Join(t.TempDir(), "weights.png")
	edgeWriter := runNetworkPipeline(info)
	assert.Zero(t, edgeWriter.NumEdges())
	data, err := os.ReadFile(info.Net.OutFile)
	require.NoError(t, err)
	assert.Equal(t, network.Header+"\n", string(data))
	assert.NoFileExists(t, info.Net.PlotFile)
}

func TestNetworkPipelineExtraOutputs(t *testing.T) {
	info := testParameters(t)
	tmpDir := t.TempDir()
	info.Net.GFAfile = filepath.Join(tmpDir, "network.gfa")
	info.Net.PlotFile = filepath.Join(tmpDir, "weights.png")
	info.AttachContext(context.Background())
	edgeWriter := runNetworkPipeline(info)
	assert.Equal(t, len(expectedEdges), edgeWriter.NumEdges())
	assert.FileExists(t, info.Net.PlotFile)
	data, err := os.ReadFile(info.Net.GFAfile)
	require.NoError(t, err)
	links := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "L\t") {
			links++
		}
	}
	assert.Equal(t, len(expectedEdges), links)
}
