package records

import "carbon-track/models"

// EventKind décrit la mutation qui a déclenché une notification.
type EventKind string

const (
	EventLoaded  EventKind = "loaded"
	EventAdded   EventKind = "added"
	EventDeleted EventKind = "deleted"
	EventCleared EventKind = "cleared"
)

// Event est transmis aux abonnés après chaque changement d'état du store.
// Records est une copie de la collection après la mutation.
type Event struct {
	Kind     EventKind
	Identity string
	Record   *models.EmissionRecord
	Records  []models.EmissionRecord
	// Warning est renseigné au chargement quand la valeur stockée était illisible.
	Warning error
}

// Subscriber reçoit les événements ; il ne doit pas rappeler le store de façon bloquante.
type Subscriber func(Event)
