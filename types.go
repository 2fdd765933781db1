package main

// Reading je jedno měření odesílané do MQTT.
// Krátké klíče ("t", "v") šetří pásmo - při 100 senzorech za sekundu to je znát.
type Reading struct {
	// Timestamp: Unix čas v sekundách, stejný pro všechny senzory jednoho tiku.
	Timestamp int64 `json:"t"`

	// Value: Hodnota zaokrouhlená na 2 desetinná místa.
	Value float64 `json:"v"`

	// SensorID: Index senzoru 0..N-1.
	SensorID int `json:"id"`
}

// Params je snímek řídicích parametrů simulace.
type Params struct {
	Mean  float64
	Noise float64
}

// TickStats shrnuje poslední publikační tik (pro stavový řádek).
type TickStats struct {
	Published int
	Failed    int
}

// Snapshot je konzistentní kopie sdíleného stavu pro vykreslení.
type Snapshot struct {
	Params
	Grid [][]float64
	Last TickStats
}

// Category určuje barvu buňky podle odchylky od středu.
type Category int

const (
	CategoryNormal Category = iota
	CategoryLow
	CategoryHigh
)

func (c Category) String() string {
	switch c {
	case CategoryLow:
		return "low"
	case CategoryHigh:
		return "high"
	default:
		return "normal"
	}
}

// Key je rozpoznaná klávesa. Terminál převádí své události na tyto hodnoty.
type Key int

const (
	KeyNone Key = iota
	KeyQuit
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)
