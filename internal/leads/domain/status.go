// Package domain holds the lead lifecycle vocabulary shared by the leads
// service and repository layers.
package domain

// Lead status labels. The column is free text, not an enum; these labels are
// the only values the engine ever writes and are driven exclusively by
// successful lead actions.
const (
	StatusNovo         = "novo"
	StatusAtribuido    = "atribuido"
	StatusEmContato    = "em_contato"
	StatusDescartado   = "descartado"
	StatusFechadoSemOS = "fechado_sem_os"
	StatusFechadoComOS = "fechado_com_os"
)

// IsTerminal reports whether a status label ends the lead's working life.
// Terminal leads still accept further events; the openness is deliberate so
// late notes and corrections keep their audit trail.
func IsTerminal(status string) bool {
	switch status {
	case StatusDescartado, StatusFechadoSemOS, StatusFechadoComOS:
		return true
	}
	return false
}
