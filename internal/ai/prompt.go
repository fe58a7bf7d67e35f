package ai

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/v0xg/autofill/internal/fields"
)

var (
	maleNames   = []string{"Ahmad", "Budi", "Candra", "Dedi", "Eko", "Fajar", "Gunawan", "Hadi", "Indra", "Joko", "Krisna", "Lukman", "Made", "Nugroho", "Oscar", "Putra", "Rizky", "Sandi", "Toni", "Umar"}
	femaleNames = []string{"Ani", "Bella", "Citra", "Dewi", "Eka", "Fitri", "Gita", "Hani", "Indah", "Julia", "Kartika", "Lina", "Maya", "Nina", "Okta", "Putri", "Ratna", "Sari", "Tina", "Ulfa"}
	lastNames   = []string{"Pratama", "Sari", "Wijaya", "Santoso", "Kurniawan", "Lestari", "Permana", "Anggraini", "Setiawan", "Handayani", "Nugraha", "Maharani", "Saputra", "Indrawati", "Kusuma"}
	cities      = []string{"Jakarta", "Bandung", "Surabaya", "Medan", "Semarang", "Makassar", "Palembang", "Yogyakarta", "Denpasar", "Malang", "Bogor", "Tangerang", "Bekasi", "Depok", "Batam"}
	domains     = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "student.unri.ac.id", "company.co.id", "email.com"}
)

// Hints vary the generated data between calls.
type Hints struct {
	// Used lists recently generated values the model should avoid.
	Used []string
	// Seed picks the suggested names, city and domain.
	Seed int
	// Timestamp is echoed into the prompt; zero means now.
	Timestamp time.Time
}

// NewHints returns hints with a random seed.
func NewHints(used []string) Hints {
	return Hints{Used: used, Seed: rand.IntN(1000), Timestamp: time.Now()}
}

const promptHeader = `Sebagai AI assistant untuk testing developer, buatkan data form yang realistis dan BERVARIASI dalam format JSON.

PENTING: Gunakan data yang BERBEDA setiap kali! Jangan gunakan data yang sama berulang-ulang.

Seed variasi: %d
Timestamp: %d`

const usedDataSection = `

DATA YANG SUDAH DIGUNAKAN SEBELUMNYA (JANGAN GUNAKAN LAGI):
%s

WAJIB: Hindari menggunakan data di atas! Buat variasi yang berbeda dan kreatif.`

const promptFooter = `
Buatkan data yang sesuai untuk setiap field dalam format JSON seperti ini:
{
  "field_identifier_1": "nilai_yang_sesuai",
  "field_identifier_2": "nilai_yang_sesuai"
}

Gunakan name, id, atau placeholder sebagai identifier. Pastikan data realistis dan BERVARIASI untuk testing:

VARIASI DATA YANG DISARANKAN:
- Name: Pilih dari variasi seperti "%[1]s %[3]s", "%[2]s %[3]s", atau kombinasi lain yang unik
- Email: Gunakan variasi seperti "%[4]s.%[5]s@%[6]s" atau format kreatif lainnya
- Phone: Variasikan format nomor telepon Indonesia (08xx-xxxx-xxxx, +62-8xx-xxxx-xxxx)
- City: Pilih dari kota seperti "%[7]s" atau kota Indonesia lainnya secara acak
- Address: Gunakan alamat lengkap yang bervariasi dengan nama jalan, nomor, dan kota yang berbeda
- Date: Gunakan tanggal yang bervariasi sesuai konteks
- Password: Buat password kuat yang berbeda-beda (min 8 karakter, kombinasi huruf, angka, simbol)
- Number: Gunakan angka yang masuk akal dan bervariasi
- Company: Variasikan nama perusahaan Indonesia (PT, CV, UD, dll)
- Select/Dropdown: Berikan nilai umum yang sesuai

WAJIB: Pastikan setiap kali generate menghasilkan data yang BERBEDA dan UNIK!

Hanya return JSON object saja, tanpa teks tambahan.`

// BuildPrompt renders the generation prompt for descriptors.
func BuildPrompt(descriptors []fields.Descriptor, hints Hints) string {
	seed := hints.Seed
	if seed < 0 {
		seed = -seed
	}
	ts := hints.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, promptHeader, seed, ts.UnixMilli())

	if len(hints.Used) > 0 {
		lines := make([]string, len(hints.Used))
		for i, v := range hints.Used {
			lines[i] = "- " + v
		}
		fmt.Fprintf(&b, usedDataSection, strings.Join(lines, "\n"))
	}

	b.WriteString("\n\nBerikut adalah field-field yang perlu diisi:\n\n")
	for i, d := range descriptors {
		fmt.Fprintf(&b, "%d. ", i+1)
		if d.Label != "" {
			fmt.Fprintf(&b, "Label: %q ", d.Label)
		}
		if d.Name != "" {
			fmt.Fprintf(&b, "Name: %q ", d.Name)
		}
		if d.ID != "" {
			fmt.Fprintf(&b, "ID: %q ", d.ID)
		}
		if d.Placeholder != "" {
			fmt.Fprintf(&b, "Placeholder: %q ", d.Placeholder)
		}
		fieldType := d.FieldType
		if fieldType == "" {
			fieldType = fields.TypeText
		}
		fmt.Fprintf(&b, "Type: %s FieldType: %s", d.Type, fieldType)
		if d.Required {
			b.WriteString(" (Required)")
		}
		if d.MaxLength != nil && *d.MaxLength > 0 {
			fmt.Fprintf(&b, " MaxLength: %d", *d.MaxLength)
		}
		b.WriteString("\n")
	}

	male := maleNames[seed%len(maleNames)]
	female := femaleNames[seed%len(femaleNames)]
	last := lastNames[(seed*2)%len(lastNames)]
	fmt.Fprintf(&b, promptFooter,
		male, female, last,
		strings.ToLower(male), strings.ToLower(last), domains[seed%len(domains)],
		cities[seed%len(cities)])

	return b.String()
}
