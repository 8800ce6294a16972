// Package pngmeta embeds compact generation metadata into PNG files as
// tEXt chunks, so rendered images carry their prompt and sampler settings
// without the full workflow graph.
package pngmeta

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"strconv"
)

// LoraRef records one LoRA applied during generation.
type LoraRef struct {
	Lora           string  `json:"lora"`
	Weight         float64 `json:"weight,omitempty"`
	CivitaiModelID int     `json:"civitai_model_id,omitempty"`
}

// GenerationMeta is the compact metadata object stored under the
// generation_data key. Zero values are omitted for compactness.
type GenerationMeta struct {
	ModelName       string    `json:"model_name,omitempty"`
	Prompt          string    `json:"prompt,omitempty"`
	NegativePrompt  string    `json:"negative_prompt,omitempty"`
	Size            string    `json:"size,omitempty"`
	Width           int       `json:"width,omitempty"`
	Height          int       `json:"height,omitempty"`
	CfgScale        float64   `json:"cfg_scale,omitempty"`
	Sampler         string    `json:"sampler,omitempty"`
	Steps           int       `json:"steps,omitempty"`
	Seed            int64     `json:"seed,omitempty"`
	Loras           []LoraRef `json:"loras,omitempty"`
	CivitaiModelIDs []int     `json:"civitai_model_ids,omitempty"`
}

// Normalize fills the derived size field from width and height.
func (m *GenerationMeta) Normalize() {
	if m.Size == "" && m.Width > 0 && m.Height > 0 {
		m.Size = fmt.Sprintf("%dx%d", m.Width, m.Height)
	}
}

// TextChunks returns the key/value pairs to embed: the JSON blob plus
// mirrored human-readable keys that image platforms display.
func (m GenerationMeta) TextChunks() ([][2]string, error) {
	m.Normalize()
	blob, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode generation metadata: %w", err)
	}

	chunks := [][2]string{{"generation_data", string(blob)}}
	add := func(key, value string) {
		if value != "" {
			chunks = append(chunks, [2]string{key, value})
		}
	}
	add("Prompt", m.Prompt)
	add("Negative Prompt", m.NegativePrompt)
	add("Sampler", m.Sampler)
	if m.CfgScale > 0 {
		add("CFG Scale", strconv.FormatFloat(m.CfgScale, 'f', -1, 64))
	}
	if m.Steps > 0 {
		add("Steps", strconv.Itoa(m.Steps))
	}
	if m.Seed != 0 {
		add("Seed", strconv.FormatInt(m.Seed, 10))
	}
	if m.Width > 0 {
		add("Width", strconv.Itoa(m.Width))
	}
	if m.Height > 0 {
		add("Height", strconv.Itoa(m.Height))
	}
	add("Model", m.ModelName)
	return chunks, nil
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Embed splices the metadata tEXt chunks into a PNG byte stream, placing
// them just before the IEND chunk.
func Embed(png []byte, meta GenerationMeta) ([]byte, error) {
	if !bytes.HasPrefix(png, pngSignature) {
		return nil, fmt.Errorf("not a PNG stream")
	}
	iend := findIEND(png)
	if iend < 0 {
		return nil, fmt.Errorf("PNG stream has no IEND chunk")
	}

	textChunks, err := meta.TextChunks()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(png[:iend])
	for _, kv := range textChunks {
		writeTextChunk(&buf, kv[0], kv[1])
	}
	buf.Write(png[iend:])
	return buf.Bytes(), nil
}

// findIEND walks the chunk list and returns the offset of the IEND chunk
// header, or -1 when the stream is truncated.
func findIEND(png []byte) int {
	offset := len(pngSignature)
	for offset+8 <= len(png) {
		length := int(binary.BigEndian.Uint32(png[offset : offset+4]))
		chunkType := string(png[offset+4 : offset+8])
		if chunkType == "IEND" {
			return offset
		}
		offset += 8 + length + 4
	}
	return -1
}

// writeTextChunk emits one tEXt chunk: length, type, keyword NUL text, crc.
func writeTextChunk(buf *bytes.Buffer, key, value string) {
	data := make([]byte, 0, len(key)+1+len(value))
	data = append(data, key...)
	data = append(data, 0)
	data = append(data, value...)

	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	buf.Write(length[:])

	crc := crc32.NewIEEE()
	buf.WriteString("tEXt")
	crc.Write([]byte("tEXt"))
	buf.Write(data)
	crc.Write(data)

	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	buf.Write(sum[:])
}

// Extract reads the generation_data chunk back out of a PNG stream.
func Extract(png []byte) (GenerationMeta, error) {
	var meta GenerationMeta
	if !bytes.HasPrefix(png, pngSignature) {
		return meta, fmt.Errorf("not a PNG stream")
	}

	offset := len(pngSignature)
	for offset+8 <= len(png) {
		length := int(binary.BigEndian.Uint32(png[offset : offset+4]))
		chunkType := string(png[offset+4 : offset+8])
		if chunkType == "tEXt" && offset+8+length <= len(png) {
			data := png[offset+8 : offset+8+length]
			if key, value, ok := bytes.Cut(data, []byte{0}); ok && string(key) == "generation_data" {
				if err := json.Unmarshal(value, &meta); err != nil {
					return meta, fmt.Errorf("failed to parse generation metadata: %w", err)
				}
				return meta, nil
			}
		}
		offset += 8 + length + 4
	}
	return meta, fmt.Errorf("no generation metadata found")
}
