package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/lattice-pricer/src/eventmodels"
)

// LoadContracts reads contract requests from a .csv, .yaml or .yml file.
func LoadContracts(path string) ([]eventmodels.ContractRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadContracts: failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ReadContractsCsv(f)
	case ".yaml", ".yml":
		return ReadContractsYAML(f)
	default:
		return nil, fmt.Errorf("LoadContracts: unsupported file extension %q", ext)
	}
}

func ReadContractsCsv(r io.Reader) ([]eventmodels.ContractRequest, error) {
	var rows []eventmodels.ContractRequest
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("ReadContractsCsv: %w", err)
	}

	return rows, nil
}

func ReadContractsYAML(r io.Reader) ([]eventmodels.ContractRequest, error) {
	var config eventmodels.ContractsConfigYAML
	if err := yaml.NewDecoder(r).Decode(&config); err != nil {
		return nil, fmt.Errorf("ReadContractsYAML: %w", err)
	}

	return config.Requests(), nil
}

func WriteResultsCsv(w io.Writer, results []*eventmodels.PricingResult) error {
	if err := gocsv.Marshal(&results, w); err != nil {
		return fmt.Errorf("WriteResultsCsv: %w", err)
	}

	return nil
}

// ExportToCsv writes results to outFilePath, creating its directory if needed.
func ExportToCsv(outFilePath string, results []*eventmodels.PricingResult) error {
	if dir := filepath.Dir(outFilePath); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("ExportToCsv: failed to create directory: %w", err)
		}
	}

	file, err := os.Create(outFilePath)
	if err != nil {
		return fmt.Errorf("ExportToCsv: failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteResultsCsv(file, results); err != nil {
		return fmt.Errorf("ExportToCsv: failed to write to file: %w", err)
	}

	return nil
}
