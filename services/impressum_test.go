package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleImpressum = `Impressum
Testfirma GmbH
Musterstraße 12, 20095 Hamburg
Geschäftsführer: Max Mustermann, Erika Beispiel
Amtsgericht Hamburg, HRB 123456
USt-IdNr.: DE 812345678
Steuernummer: 27/123/45678
Telefon: +49 40 123456-0
E-Mail: info@testfirma.de
Folgen Sie uns: https://www.linkedin.com/company/testfirma und https://www.xing.com/companies/testfirma`

func TestExtractImpressumFields(t *testing.T) {
	fields := ExtractImpressumFields(sampleImpressum, DefaultImpressumPatterns)

	assert.Equal(t, "Max Mustermann", fields["geschaeftsfuehrer"])
	assert.Equal(t, "123456", fields["hrb_number"])
	assert.Equal(t, "Hamburg", fields["amtsgericht"])
	assert.Equal(t, "DE 812345678", fields["ust_id"])
	assert.Contains(t, fields["steuernummer"], "27/123/45678")
}

func TestExtractImpressumFieldsMissing(t *testing.T) {
	fields := ExtractImpressumFields("Nur ein bisschen Text ohne Registerangaben.", DefaultImpressumPatterns)
	assert.Empty(t, fields)
}

func TestExtractSocialLinks(t *testing.T) {
	links := ExtractSocialLinks(sampleImpressum, DefaultSocialPatterns)

	assert.Equal(t, "https://linkedin.com/company/testfirma", links["linkedin"])
	assert.Equal(t, "https://xing.com/companies/testfirma", links["xing"])
	assert.NotContains(t, links, "facebook")
}

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, "info@testfirma.de", ExtractEmail(sampleImpressum))
	assert.Equal(t, "", ExtractEmail("kein Kontakt hier"))
}

func TestExtractPhone(t *testing.T) {
	assert.NotEmpty(t, ExtractPhone(sampleImpressum))
	assert.Equal(t, "", ExtractPhone("keine Nummer"))
}

func TestExtractHRBNumber(t *testing.T) {
	assert.Equal(t, "123456", ExtractHRBNumber(sampleImpressum))
	assert.Equal(t, "", ExtractHRBNumber("kein Registereintrag"))
}

func TestIsCorporateName(t *testing.T) {
	assert.True(t, IsCorporateName("ACME Verwaltungs GmbH"))
	assert.True(t, IsCorporateName("Beta Holding"))
	assert.True(t, IsCorporateName("Mustermann Beteiligungs-G.m.b.H."))
	assert.False(t, IsCorporateName("Anna Schmidt"))
	assert.False(t, IsCorporateName("Otto Müller"))
}
