package services

import "fmt"

const (
	DefaultCharacter = "可愛助手"
	DefaultStyle     = "3D"
)

var characterDescriptions = map[string]string{
	"熊大熊二": "two friendly brown bears, 3D cartoon style, cute faces",
	"喜羊羊":  "a cute white sheep with a bell, 3D animated style",
	"小博士":  "a wise little owl with glasses, 3D stylized",
}

// CharacterDescription maps a display name to the English visual description
// fed to the video model. Unknown names get a generic mascot.
func CharacterDescription(name string) string {
	if desc, ok := characterDescriptions[name]; ok {
		return desc
	}
	return "a cute 3D educational character"
}

func BuildScenePrompt(style, characterDesc, visualPrompt string) string {
	if style == "" {
		style = DefaultStyle
	}
	return fmt.Sprintf("%s animation, %s, %s, vibrant colors.", style, characterDesc, visualPrompt)
}
