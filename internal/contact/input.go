package contact

// Input is an untrusted contact payload. A nil field is absent.
type Input struct {
	Typ                 *string `json:"typ,omitempty"`
	Kategori            *string `json:"kategori,omitempty"`
	Fornamn             *string `json:"fornamn,omitempty"`
	Efternamn           *string `json:"efternamn,omitempty"`
	Foretag             *string `json:"foretag,omitempty"`
	Personnummer        *string `json:"personnummer,omitempty"`
	Organisationsnummer *string `json:"organisationsnummer,omitempty"`
	Email               *string `json:"email,omitempty"`
	Telefon             *string `json:"telefon,omitempty"`
	Mobil               *string `json:"mobil,omitempty"`
	Adress              *string `json:"adress,omitempty"`
	Postnummer          *string `json:"postnummer,omitempty"`
	Ort                 *string `json:"ort,omitempty"`
}

// Patch is the validated, normalized subset of fields that were supplied.
// On create every mandatory field is set and Kategori carries its default.
type Patch struct {
	Typ                 *Typ      `json:"typ,omitempty"`
	Kategori            *Kategori `json:"kategori,omitempty"`
	Fornamn             *string   `json:"fornamn,omitempty"`
	Efternamn           *string   `json:"efternamn,omitempty"`
	Foretag             *string   `json:"foretag,omitempty"`
	Personnummer        *string   `json:"personnummer,omitempty"`
	Organisationsnummer *string   `json:"organisationsnummer,omitempty"`
	Email               *string   `json:"email,omitempty"`
	Telefon             *string   `json:"telefon,omitempty"`
	Mobil               *string   `json:"mobil,omitempty"`
	Adress              *string   `json:"adress,omitempty"`
	Postnummer          *string   `json:"postnummer,omitempty"`
	Ort                 *string   `json:"ort,omitempty"`
}

// Filter is a contact list query.
type Filter struct {
	Typ      *string `json:"typ,omitempty"`
	Kategori *string `json:"kategori,omitempty"`
	Search   *string `json:"search,omitempty"`
}
