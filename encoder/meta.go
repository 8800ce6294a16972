package encoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"violet/logger"
)

// WorkflowMeta is decoded from the violet_meta node embedded in a workflow.
// It names the widgets that receive the prompts so callers do not have to.
type WorkflowMeta struct {
	Name           string                    `toml:"name"`
	Description    string                    `toml:"description"`
	PositiveTarget Target                    `toml:"positiveTarget"`
	NegativeTarget Target                    `toml:"negativeTarget"`
	SeedTarget     Target                    `toml:"seedTarget"`
	Hardcoded      map[string]HardcodedValue `toml:"hardcoded"`
}

// Target is a specific widget in a ComfyUI workflow to update.
type Target struct {
	Node        string `toml:"node"`
	WidgetIndex int    `toml:"widget_index"`
}

// HardcodedValue is set directly in the workflow on every render.
type HardcodedValue struct {
	Value   interface{} `toml:"value"`
	Targets []Target    `toml:"targets"`
}

// GetWorkflowMeta reads the TOML stored in the first widget of the node
// titled violet_meta. Both the current node layout and the legacy
// properties-based title are supported.
func GetWorkflowMeta(workflowFile string) (*WorkflowMeta, error) {
	const metaNodeTitle = "violet_meta"

	if strings.Contains(workflowFile, "..") {
		return nil, fmt.Errorf("invalid workflow file path: %s", workflowFile)
	}

	data, err := os.ReadFile(workflowFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file %s: %w", workflowFile, err)
	}

	var workflowData map[string]interface{}
	if err := json.Unmarshal(data, &workflowData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow json: %w", err)
	}

	nodes, ok := workflowData["nodes"].([]interface{})
	if !ok {
		return nil, errors.New("workflow has no nodes")
	}

	var metaNode map[string]interface{}
	for _, n := range nodes {
		node, ok := n.(map[string]interface{})
		if !ok {
			continue
		}

		if properties, ok := node["properties"].(map[string]interface{}); ok {
			if title, ok := properties["title"].(string); ok && title == metaNodeTitle {
				metaNode = node
				break
			}
		}

		if title, ok := node["title"].(string); ok && title == metaNodeTitle {
			metaNode = node
			break
		}
	}

	if metaNode == nil {
		return nil, fmt.Errorf("workflow %s has no %s node", workflowFile, metaNodeTitle)
	}

	widgetValues, ok := metaNode["widgets_values"].([]interface{})
	if !ok || len(widgetValues) == 0 {
		return nil, fmt.Errorf("node %s has no widget_values", metaNodeTitle)
	}

	tomlString, ok := widgetValues[0].(string)
	if !ok {
		return nil, fmt.Errorf("first widget value in node %s is not a string", metaNodeTitle)
	}

	var meta WorkflowMeta
	if _, err := toml.Decode(tomlString, &meta); err != nil {
		logger.Error("Failed to decode violet_meta TOML", "error", err)
		return nil, fmt.Errorf("failed to decode violet_meta TOML: %w", err)
	}

	return &meta, nil
}
