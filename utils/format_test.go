package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp0", FormatRupiah(0))
	assert.Equal(t, "Rp500", FormatRupiah(500))
	assert.Equal(t, "Rp50.000", FormatRupiah(50000))
	assert.Equal(t, "Rp450.000", FormatRupiah(450000))
	assert.Equal(t, "Rp1.234.567", FormatRupiah(1234567))
	assert.Equal(t, "-Rp25.000", FormatRupiah(-25000))
}

func TestRenderMarkupParagraphsAndLists(t *testing.T) {
	src := "Akun premium resmi.\n\n- Garansi 30 hari\n- Full akses\n\nHubungi admin jika kendala."
	got := RenderMarkup(src)
	assert.Equal(t,
		"<p>Akun premium resmi.</p><ul><li>Garansi 30 hari</li><li>Full akses</li></ul><p>Hubungi admin jika kendala.</p>",
		got)
}

func TestRenderMarkupInline(t *testing.T) {
	assert.Equal(t, "<p><strong>Promo</strong> sampai <em>besok</em></p>", RenderMarkup("**Promo** sampai *besok*"))
	// unterminated markers stay literal
	assert.Equal(t, "<p>harga *spesial</p>", RenderMarkup("harga *spesial"))
}

func TestRenderMarkupEscapesHTML(t *testing.T) {
	got := RenderMarkup("<script>alert(1)</script>")
	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "&lt;script&gt;")
}
