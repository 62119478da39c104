package classifier

import (
	"fmt"
	"strconv"
	"strings"

	"waste-bknd/internal/models"
)

// PromptContext carries the optional container metadata supplied by the collector.
type PromptContext struct {
	ContainerType         string
	ContainerVolumeLiters *float64
}

// BuildPrompt renders the analysis instruction for one image. The material
// list is the allowed output enumeration.
func BuildPrompt(materials []models.MaterialType, pc PromptContext) string {
	names := make([]string, len(materials))
	for i, m := range materials {
		names[i] = string(m)
	}

	containerLine := "- No container specified"
	if pc.ContainerType != "" {
		containerLine = "- Container type: " + pc.ContainerType
	}
	volumeLine := "- Container volume unknown"
	if pc.ContainerVolumeLiters != nil && *pc.ContainerVolumeLiters > 0 {
		volumeLine = fmt.Sprintf("- Known container volume: %s liters",
			strconv.FormatFloat(*pc.ContainerVolumeLiters, 'f', -1, 64))
	}

	var b strings.Builder
	b.WriteString("You are an expert AI waste analyzer for municipal solid waste management in rural India (Gram Panchayat level).\n\n")
	b.WriteString("**Task**: Analyze this waste image and provide accurate estimates for waste management.\n\n")
	b.WriteString("**Context**:\n")
	b.WriteString(containerLine + "\n")
	b.WriteString(volumeLine + "\n\n")
	b.WriteString("**Instructions**:\n")
	b.WriteString("1. Identify the **dominant waste material type** from: " + strings.Join(names, ", ") + "\n")
	b.WriteString("2. Estimate the **volume** of visible waste in liters\n")
	b.WriteString("   - If container volume is provided, estimate fullness percentage and calculate volume\n")
	b.WriteString("   - If no container, estimate pile/heap volume using visual cues (size relative to surroundings)\n")
	b.WriteString("3. Assess **moisture level**: dry, moist, or wet\n")
	b.WriteString("4. Estimate **contamination level** (0.0 to 1.0): how mixed/contaminated is the waste\n")
	b.WriteString("5. Rate **image quality**: good, medium, or poor\n")
	b.WriteString("6. Provide brief reasoning for your estimates\n\n")
	b.WriteString("**Output Format** (JSON only, no other text):\n")
	b.WriteString(outputSchema)
	b.WriteString("\n\n**Important**:\n")
	b.WriteString("- Be conservative with volume estimates to avoid overestimation\n")
	b.WriteString("- Consider Indian waste characteristics (more organic waste, mixed waste common)\n")
	b.WriteString("- Return ONLY valid JSON, no markdown formatting")
	return b.String()
}

const outputSchema = `{
  "material": "one of the allowed material types",
  "volume_liters_estimate": number,
  "volume_confidence": number (0.0-1.0),
  "material_confidence": number (0.0-1.0),
  "fullness_percent": number (0-100) or null,
  "moisture_level": "dry" | "moist" | "wet" | null,
  "contamination_level": number (0.0-1.0) or null,
  "image_quality": "good" | "medium" | "poor",
  "reasoning_short": "brief explanation"
}`
