package model

import "time"

// Bronze column names as captured from the OpenSky states endpoint.
const (
	ColSnapshotTime   = "snapshot_time"
	ColTimePosition   = "time_position"
	ColICAO24         = "icao24"
	ColCallsign       = "callsign"
	ColOriginCountry  = "origin_country"
	ColLongitude      = "longitude"
	ColLatitude       = "latitude"
	ColOnGround       = "on_ground"
	ColVelocity       = "velocity"
	ColBaroAltitude   = "baro_altitude"
	ColVerticalRate   = "vertical_rate"
	ColPositionSource = "position_source"
	ColSensors        = "sensors"
)

// Silver column names.
const (
	ColSensorsStr       = "sensors_str"
	ColCodigoAeronave   = "codigo_aeronave"
	ColCodigoVuelo      = "codigo_vuelo"
	ColPaisOrigen       = "pais_origen"
	ColVelocidadKmh     = "velocidad_kmh"
	ColAltitudPies      = "altitud_pies"
	ColLatitud          = "latitud"
	ColLongitud         = "longitud"
	ColEstadoVuelo      = "estado_vuelo"
	ColFuentePosicion   = "fuente_posicion"
	ColLatenciaSegundos = "latencia_segundos"
)

// SilverColumns is the silver projection, in output order.
var SilverColumns = []string{
	ColSnapshotTime,
	ColCodigoAeronave,
	ColCodigoVuelo,
	ColPaisOrigen,
	ColVelocidadKmh,
	ColAltitudPies,
	ColLatitud,
	ColLongitud,
	ColEstadoVuelo,
	ColFuentePosicion,
	ColLatenciaSegundos,
	ColSensorsStr,
}

// SilverRenames maps bronze names onto their dashboard names.
var SilverRenames = map[string]string{
	ColLatitude:      ColLatitud,
	ColLongitude:     ColLongitud,
	ColICAO24:        ColCodigoAeronave,
	ColCallsign:      ColCodigoVuelo,
	ColOriginCountry: ColPaisOrigen,
}

// StateVector is one bronze observation of an aircraft at snapshot time.
// Pointer fields are nullable.
type StateVector struct {
	SnapshotTime   time.Time
	TimePosition   *time.Time
	ICAO24         string
	Callsign       *string
	OriginCountry  string
	Longitude      *float64
	Latitude       *float64
	OnGround       *bool
	Velocity       *float64
	BaroAltitude   *float64
	VerticalRate   *float64
	PositionSource *int32
	Sensors        []int32
}

// FlightRecord is one silver row.
type FlightRecord struct {
	SnapshotTime     time.Time
	CodigoAeronave   string
	CodigoVuelo      string
	PaisOrigen       string
	VelocidadKmh     *float64
	AltitudPies      *float64
	Latitud          float64
	Longitud         float64
	EstadoVuelo      string
	FuentePosicion   string
	LatenciaSegundos *float64
	SensorsStr       *string
}
