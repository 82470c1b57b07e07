package model

// Catalog entities are read-mostly descriptive data owned by the upstream.
// Only the fields the gateway reads or filters on are typed; the rest of the
// upstream payload is dropped on decode.

// Category tags services (e.g. "Turismo vivencial").
type Category struct {
    ID          uint64 `json:"id"`
    Name        string `json:"nombre"`
    Description string `json:"descripcion,omitempty"`
    IconURL     string `json:"icono_url,omitempty"`
}

// Slider is an image attached to a service, enterprise or municipality.
type Slider struct {
    ID          uint64 `json:"id"`
    Name        string `json:"nombre,omitempty"`
    URL         string `json:"url_completa"`
    Order       int    `json:"orden"`
    Description string `json:"descripcion,omitempty"`
}

// Schedule is one weekday/time-of-day window during which a service runs.
//  Weekday   – lowercase Spanish day name ("lunes" … "domingo")
//  StartTime – "HH:MM[:SS]"
//  EndTime   – "HH:MM[:SS]"
type Schedule struct {
    ID        uint64 `json:"id"`
    ServiceID uint64 `json:"servicio_id"`
    Weekday   string `json:"dia_semana"`
    StartTime string `json:"hora_inicio"`
    EndTime   string `json:"hora_fin"`
}

// Service is a bookable catalog item.
type Service struct {
    ID           uint64      `json:"id"`
    Name         string      `json:"nombre"`
    Description  string      `json:"descripcion"`
    Price        Amount      `json:"precio_referencial"`
    Capacity     int         `json:"capacidad,omitempty"`
    Active       bool        `json:"estado"`
    EnterpriseID uint64      `json:"emprendedor_id"`
    Latitude     *Amount     `json:"latitud,omitempty"`
    Longitude    *Amount     `json:"longitud,omitempty"`
    Location     string      `json:"ubicacion_referencia,omitempty"`
    Enterprise   *Enterprise `json:"emprendedor,omitempty"`
    Categories   []Category  `json:"categorias,omitempty"`
    Schedules    []Schedule  `json:"horarios,omitempty"`
    Sliders      []Slider    `json:"sliders,omitempty"`
}

// Enterprise owns services and may belong to an association.
type Enterprise struct {
    ID            uint64       `json:"id"`
    Name          string       `json:"nombre"`
    Description   string       `json:"descripcion"`
    Category      string       `json:"categoria,omitempty"`
    Phone         string       `json:"telefono,omitempty"`
    Email         string       `json:"email,omitempty"`
    Location      string       `json:"ubicacion,omitempty"`
    AssociationID *uint64      `json:"asociacion_id,omitempty"`
    Association   *Association `json:"asociacion,omitempty"`
    Services      []Service    `json:"servicios,omitempty"`
    Sliders       []Slider     `json:"sliders,omitempty"`
}

// Association groups enterprises and belongs to a municipality.
type Association struct {
    ID             uint64       `json:"id"`
    Name           string       `json:"nombre"`
    Description    string       `json:"descripcion"`
    MunicipalityID uint64       `json:"municipalidad_id"`
    Enterprises    []Enterprise `json:"emprendedores,omitempty"`
}

// Municipality owns sliders, galleries and associations.
type Municipality struct {
    ID           uint64        `json:"id"`
    Name         string        `json:"nombre"`
    Description  string        `json:"descripcion"`
    Sliders      []Slider      `json:"sliders_principales,omitempty"`
    Gallery      []Slider      `json:"sliders_secundarios,omitempty"`
    Associations []Association `json:"asociaciones,omitempty"`
}

// Event is a dated activity organised by an enterprise.
type Event struct {
    ID           uint64      `json:"id"`
    Name         string      `json:"nombre"`
    Description  string      `json:"descripcion"`
    Type         string      `json:"tipo_evento,omitempty"`
    StartDate    string      `json:"fecha_inicio"`
    EndDate      string      `json:"fecha_fin,omitempty"`
    StartTime    string      `json:"hora_inicio,omitempty"`
    EndTime      string      `json:"hora_fin,omitempty"`
    EnterpriseID uint64      `json:"id_emprendedor,omitempty"`
    Enterprise   *Enterprise `json:"emprendedor,omitempty"`
    Sliders      []Slider    `json:"sliders,omitempty"`
}
