package jurisdiction

// Blok regional: aturan dengan kode blok berlaku untuk semua negara anggota
// sebagai lapisan fallback di bawah aturan spesifik negara.
const BlocEU = "EU"

var euMembers = map[string]struct{}{
	"AT": {}, "BE": {}, "BG": {}, "HR": {}, "CY": {}, "CZ": {},
	"DK": {}, "EE": {}, "FI": {}, "FR": {}, "DE": {}, "GR": {},
	"HU": {}, "IE": {}, "IT": {}, "LV": {}, "LT": {}, "LU": {},
	"MT": {}, "NL": {}, "PL": {}, "PT": {}, "RO": {}, "SK": {},
	"SI": {}, "ES": {}, "SE": {},
}

// RegionalBloc mengembalikan kode blok untuk sebuah negara, atau "" jika
// negara itu bukan anggota blok manapun.
func RegionalBloc(countryCode string) string {
	if _, ok := euMembers[countryCode]; ok {
		return BlocEU
	}
	return ""
}
