package assistant

import (
	"errors"
	"fmt"

	"basegraph.app/assist/common/llm"
)

// Feature selects the prompt template and output shape of a request.
type Feature string

const (
	FeatureAnalyze    Feature = "analyze"
	FeaturePredict    Feature = "predict"
	FeatureBottleneck Feature = "bottleneck"
	FeatureAssign     Feature = "assign"
)

// ErrUnknownFeature is returned for feature identifiers outside the supported set.
var ErrUnknownFeature = errors.New("unknown feature")

// featureOrder is the display order of the catalogue.
var featureOrder = []Feature{FeatureAnalyze, FeaturePredict, FeatureBottleneck, FeatureAssign}

// FeatureInfo describes one feature for clients building an assistant panel.
type FeatureInfo struct {
	ID           Feature `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	OutputSchema any     `json:"output_schema"`
}

var featureInfo = map[Feature]FeatureInfo{
	FeatureAnalyze: {
		Title:       "Task Analyzer",
		Description: "Break down complex tasks into subtasks",
	},
	FeaturePredict: {
		Title:       "Time Prediction",
		Description: "Estimate completion times",
	},
	FeatureBottleneck: {
		Title:       "Bottleneck Detection",
		Description: "Identify project risks and delays",
	},
	FeatureAssign: {
		Title:       "Smart Assignment",
		Description: "Recommend optimal task assignments",
	},
}

func ParseFeature(s string) (Feature, error) {
	f := Feature(s)
	if _, ok := handlers[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFeature, s)
	}
	return f, nil
}

func (f Feature) String() string {
	return string(f)
}

// Catalog lists every supported feature with the JSON schema of its output.
func Catalog() []FeatureInfo {
	infos := make([]FeatureInfo, 0, len(featureOrder))
	for _, f := range featureOrder {
		info := featureInfo[f]
		info.ID = f
		info.OutputSchema = outputSchema(f)
		infos = append(infos, info)
	}
	return infos
}

func outputSchema(f Feature) any {
	switch f {
	case FeatureAnalyze:
		return llm.GenerateSchema[AnalyzeOutput]()
	case FeaturePredict:
		return llm.GenerateSchema[PredictOutput]()
	case FeatureBottleneck:
		return llm.GenerateSchema[BottleneckReport]()
	case FeatureAssign:
		return llm.GenerateSchema[AssignOutput]()
	default:
		return nil
	}
}
