package store

// Table and column names of the hosted schema.
const (
	TableCandidates  = "candidatos"
	TableFolders     = "carpetas"
	TablePostings    = "avisos"
	TableEvaluations = "evaluaciones"

	ColID        = "id"
	ColCreatedAt = "created_at"

	ColFileName      = "nombre_archivo"
	ColRawFile       = "base64"
	ColExtractedText = "texto_cv"
	ColFullName      = "nombre_candidato"
	ColEmail         = "email"
	ColPhone         = "telefono"
	ColFolderID      = "carpeta_id"
	ColNotes         = "notas"
	ColScore         = "calificacion"
	ColJustification = "resumen"

	ColName     = "nombre"
	ColParentID = "parent_id"

	ColTitle               = "titulo"
	ColDescription         = "descripcion"
	ColMaxCV               = "max_cv"
	ColValidUntil          = "valido_hasta"
	ColRequiredConditions  = "condiciones_necesarias"
	ColPreferredConditions = "condiciones_deseables"

	ColCandidateID = "candidato_id"
	ColPostingID   = "aviso_id"
)
