package entity

// GrazLabels классы датасета GRAZPEDWRI-DX в порядке модели.
var GrazLabels = []string{
	"boneanomaly",
	"bonelesion",
	"foreignbody",
	"fracture",
	"metal",
	"periostealreaction",
	"pronatorsign",
	"softtissue",
	"text",
}

// LabelFor возвращает имя класса или "unknown".
func LabelFor(labels []string, id int) string {
	if id >= 0 && id < len(labels) {
		return labels[id]
	}
	return "unknown"
}
