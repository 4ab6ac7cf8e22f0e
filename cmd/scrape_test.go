package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputPaths(t *testing.T) {
	csvPath, jsonPath := outputPaths("", "data/house_data.csv", "data/house_data.json")
	assert.Equal(t, "data/house_data.csv", csvPath)
	assert.Equal(t, "data/house_data.json", jsonPath)

	csvPath, jsonPath = outputPaths("dataset", "data/house_data.csv", "data/house_data.json")
	assert.Equal(t, "dataset.csv", csvPath)
	assert.Equal(t, "dataset.json", jsonPath)
}

func TestScrapeCommandHasOutFlag(t *testing.T) {
	f := scrapeCmd.Flags().Lookup("out")
	assert.NotNil(t, f)
}
