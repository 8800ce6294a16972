// Package encoder submits blend plans to a ComfyUI instance and collects
// the rendered output.
package encoder

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/richinsley/comfy2go/client"
	"github.com/schollz/progressbar/v3"

	"violet/blend"
	"violet/logger"
	"violet/settings"
)

// Encoder drives one ComfyUI backend selected by port name.
type Encoder struct {
	config settings.ComfyUiConfig
	addr   string
	port   int
}

// New resolves the backend address for the named port, falling back to the
// first configured port when the name is unknown.
func New(config settings.ComfyUiConfig, portName string) (*Encoder, error) {
	port, found := portByName(config, portName)
	if !found && len(config.Ports) > 0 {
		port = config.Ports[0].Port
		found = true
	}
	if !found {
		return nil, errors.New("no ComfyUI ports configured")
	}
	return &Encoder{config: config, addr: config.Url, port: port}, nil
}

func portByName(config settings.ComfyUiConfig, name string) (int, bool) {
	for _, p := range config.Ports {
		if p.Name == name {
			return p.Port, true
		}
	}
	return 0, false
}

// RandomSeed draws a non-negative int64 seed from crypto/rand.
func RandomSeed() (int64, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(1<<63-1))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random seed: %w", err)
	}
	return seed.Int64(), nil
}

// FreeVram asks the backend to unload models after a render.
func (e *Encoder) FreeVram() error {
	url := fmt.Sprintf("http://%s:%d/free", e.addr, e.port)
	req, err := http.NewRequest("POST", url, nil)
	if err != nil {
		return fmt.Errorf("could not create free request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	body := `{"unload_models": true, "free_memory": true}`
	req.Body = io.NopCloser(strings.NewReader(body))
	req.ContentLength = int64(len(body))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not send free request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("free request failed with status: %s", resp.Status)
	}

	logger.Info("Successfully sent free VRAM request to ComfyUI")
	return nil
}

// Submission names the workflow and the values pushed into its API group.
type Submission struct {
	Workflow string
	Plan     blend.Plan
	Seed     int64
	// Widget indexes within the positive, negative and seed nodes of
	// the workflow's API group.
	PositiveNode string
	NegativeNode string
	SeedNode     string
	WidgetIndex  int

	meta *WorkflowMeta
}

// Render queues the workflow with the plan's prompts applied and blocks
// until the backend reports an output file.
func (e *Encoder) Render(sub Submission) (string, error) {
	workflowFile := filepath.Join(e.config.WorkflowDir, sub.Workflow+".json")
	logger.Debug("Starting render", "workflow", workflowFile, "port", e.port)

	defer func() {
		if err := e.FreeVram(); err != nil {
			logger.Error("Error freeing VRAM", "error", err)
		}
	}()

	seed := sub.Seed
	if seed == 0 {
		var err error
		if seed, err = RandomSeed(); err != nil {
			return "", err
		}
	}

	// Prompt targets not named by the caller come from the workflow's own
	// violet_meta node.
	if sub.PositiveNode == "" {
		meta, err := GetWorkflowMeta(workflowFile)
		if err != nil {
			return "", fmt.Errorf("no prompt targets given and %w", err)
		}
		sub.PositiveNode = meta.PositiveTarget.Node
		sub.WidgetIndex = meta.PositiveTarget.WidgetIndex
		sub.NegativeNode = meta.NegativeTarget.Node
		sub.SeedNode = meta.SeedTarget.Node
		sub.meta = meta
	}

	// Widget updates keyed by node title or type within the API group.
	widgetUpdates := map[string]map[int]interface{}{}
	setWidget := func(node string, index int, value interface{}) {
		if node == "" {
			return
		}
		if _, ok := widgetUpdates[node]; !ok {
			widgetUpdates[node] = make(map[int]interface{})
		}
		widgetUpdates[node][index] = value
	}
	setWidget(sub.PositiveNode, sub.WidgetIndex, renderPlanText(sub.Plan.Positive))
	setWidget(sub.NegativeNode, sub.WidgetIndex, sub.Plan.NegativeText)
	setWidget(sub.SeedNode, 0, seed)
	if sub.meta != nil {
		for name, hardcoded := range sub.meta.Hardcoded {
			for _, target := range hardcoded.Targets {
				logger.Debug("Setting hardcoded value", "param", name, "node", target.Node)
				setWidget(target.Node, target.WidgetIndex, hardcoded.Value)
			}
		}
	}

	c := client.NewComfyClient(e.addr, e.port, nil)
	if !c.IsInitialized() {
		if err := c.Init(); err != nil {
			return "", fmt.Errorf("error initializing client: %w", err)
		}
	}

	graph, _, err := c.NewGraphFromJsonFile(workflowFile)
	if err != nil {
		return "", fmt.Errorf("error loading graph JSON: %w", err)
	}

	apiNodes := graph.GetNodesInGroup(graph.GetGroupWithTitle("API"))
	for _, node := range apiNodes {
		updates, ok := widgetUpdates[node.Type]
		if !ok {
			updates = widgetUpdates[node.Title]
		}
		if updates == nil {
			continue
		}
		if values, ok := node.WidgetValues.([]interface{}); ok {
			for widgetIndex, value := range updates {
				if widgetIndex < len(values) {
					values[widgetIndex] = value
					logger.Debug("Set widget value", "widget", widgetIndex, "node", node.Title, "value", value)
				}
			}
		}
	}

	item, err := c.QueuePrompt(graph)
	if err != nil {
		return "", fmt.Errorf("failed to queue prompt: %w", err)
	}

	var bar *progressbar.ProgressBar
	var currentNodeTitle string
	for continueLoop := true; continueLoop; {
		msg := <-item.Messages
		switch msg.Type {
		case "started":
			qm := msg.ToPromptMessageStarted()
			logger.Info("Start executing prompt", "prompt_id", qm.PromptID)
		case "executing":
			bar = nil
			qm := msg.ToPromptMessageExecuting()
			currentNodeTitle = qm.Title
			logger.Debug("Executing node", "node_id", qm.NodeID)
		case "progress":
			qm := msg.ToPromptMessageProgress()
			if bar == nil {
				bar = progressbar.Default(int64(qm.Max), currentNodeTitle)
			}
			bar.Set(qm.Value)
		case "stopped":
			qm := msg.ToPromptMessageStopped()
			if qm.Exception != nil {
				return "", fmt.Errorf("execution stopped with exception: %s: %s", qm.Exception.ExceptionType, qm.Exception.ExceptionMessage)
			}
			continueLoop = false
		case "data":
			qm := msg.ToPromptMessageData()
			for k, v := range qm.Data {
				if k != "images" && k != "gifs" {
					continue
				}
				for _, output := range v {
					imgData, err := c.GetImage(output)
					if err != nil {
						return "", fmt.Errorf("failed to get image: %w", err)
					}
					if err := os.WriteFile(output.Filename, *imgData, 0o644); err != nil {
						return "", fmt.Errorf("failed to write image: %w", err)
					}
					return output.Filename, nil
				}
			}
		}
	}

	return "", errors.New("no output file received")
}

// renderPlanText flattens the positive encodes back into one prompt,
// re-applying strength weighting per group. Workflows with a single
// positive input receive the whole plan this way.
func renderPlanText(encodes []blend.Encode) string {
	parts := make([]string, 0, len(encodes))
	for _, enc := range encodes {
		if enc.Text == "" {
			continue
		}
		if enc.Strength != 1.0 {
			parts = append(parts, fmt.Sprintf("(%s:%.2f)", enc.Text, enc.Strength))
		} else {
			parts = append(parts, enc.Text)
		}
	}
	return strings.Join(parts, ", ")
}
