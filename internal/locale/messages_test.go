package locale

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/infrastructure/vision"
)

func report(n int) *entity.Report {
	findings := make([]entity.Finding, n)
	for i := range findings {
		findings[i] = entity.Finding{Label: "fracture", Confidence: 0.873}
	}
	return entity.NewReport(findings, 0.25, nil)
}

func TestMessages_DescribeSpanish(t *testing.T) {
	m, err := NewMessages("")
	require.NoError(t, err)
	require.Equal(t, "es", m.Lang())

	require.Equal(t, "NORMAL: No se han detectado fracturas significativas.", m.Describe(report(0)))
	require.Equal(t, "ALERTA: Se ha detectado 1 posible fractura.", m.Describe(report(1)))
	require.Equal(t, "ALERTA: Se han detectado 5 posibles fracturas.", m.Describe(report(5)))
}

func TestMessages_DescribeEnglish(t *testing.T) {
	m, err := NewMessages("en")
	require.NoError(t, err)

	require.Equal(t, "NORMAL: no significant fractures detected.", m.Describe(report(0)))
	require.Equal(t, "ALERT: 2 possible fractures detected.", m.Describe(report(2)))
}

func TestMessages_Highlight(t *testing.T) {
	m, err := NewMessages("es")
	require.NoError(t, err)

	r := report(4)
	require.Len(t, r.Highlights, 3)
	require.Equal(t, "Hallazgo 1: fracture 87.3%", m.Highlight(r.Highlights[0]))
	require.Equal(t, "Hallazgo 3", m.HighlightTitle(r.Highlights[2]))
	require.Equal(t, "y 1 hallazgo más sin mostrar.", m.Hidden(r))
	require.Empty(t, m.Hidden(report(3)))
}

func TestMessages_FallbackAndUI(t *testing.T) {
	m, err := NewMessages("fr")
	require.NoError(t, err)
	require.Equal(t, "Primero cargue una radiografía.", m.T(MsgErrorNoImage, nil))

	ui := m.UI()
	require.Len(t, ui, len(uiMessages))
	require.Equal(t, "Analizar Imagen con IA", ui[MsgAnalyzeButton])

	// неизвестный идентификатор возвращается как есть
	require.Equal(t, "NoSuchMessage", m.T("NoSuchMessage", nil))
}

func TestMessages_Error(t *testing.T) {
	m, err := NewMessages("en")
	require.NoError(t, err)

	require.Equal(t, "Upload a radiograph first.", m.Error(fmt.Errorf("wrap: %w", entity.ErrNoImage)))
	require.Equal(t, "Parameters out of range.", m.Error(entity.ErrInvalidParams))
	require.Equal(t, "Could not read the image.", m.Error(vision.ErrDecode))
	require.Equal(t, "Could not read the image.", m.Error(entity.ErrUnsupportedType))
	require.Equal(t, "AI model error: boom", m.Error(errors.New("boom")))
}
