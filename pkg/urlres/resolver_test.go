package urlres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTopicID(t *testing.T) {
	r := NewResolver()

	content := "<!-- loio640cabfd35c3469aacf31be28924d50d -->\n\n# Worklist Template\n\nbody"
	got := r.Resolve("/sapui5", "04-essentials/worklist-template.md", content)
	assert.Equal(t, "https://ui5.sap.com/#/topic/640cabfd35c3469aacf31be28924d50d", got)
}

func TestResolveTopicIDFromFilename(t *testing.T) {
	r := NewResolver()

	got := r.Resolve("/sapui5", "docs/whats-new-1a4ecb8f-9b25-4f23-8c6b-2d3e4f5a6b7c.md", "# What's New")
	assert.Equal(t, "https://ui5.sap.com/#/topic/1a4ecb8f9b254f238c6b2d3e4f5a6b7c", got)
}

func TestResolveAPIReference(t *testing.T) {
	r := NewResolver()

	got := r.Resolve("/openui5-api", "src/sap.m/src/sap/m/Button.js", "")
	assert.Equal(t, "https://sdk.openui5.org/#/api/sap.m.Button", got)
}

func TestResolveDocsify(t *testing.T) {
	r := NewResolver()

	content := "---\nid: locators\n---\n# Locators"
	got := r.Resolve("/wdi5", "docs/locators.md", content)
	assert.Equal(t, "https://ui5-community.github.io/wdi5/#/docs/locators", got)
}

func TestResolveDocsifyNoFrontMatter(t *testing.T) {
	r := NewResolver()

	got := r.Resolve("/wdi5", "authentication.md", "# Authentication")
	assert.Equal(t, "https://ui5-community.github.io/wdi5/#/authentication", got)
}

func TestResolveSample(t *testing.T) {
	r := NewResolver()

	got := r.Resolve("/openui5-samples", "sap.m.ColumnMicroChart/sample/Basic/Component.js", "")
	assert.Equal(t, "https://ui5.sap.com/entity/sap.m.ColumnMicroChart/sample/Basic", got)
}

func TestResolveGenericFallback(t *testing.T) {
	r := NewResolver()

	got := r.Resolve("/cap", "guides/providing-services.md", "# Providing Services")
	assert.Equal(t, "https://cap.cloud.sap/docs/guides/providing-services#providing-services", got)
}

func TestResolveABAPFlavors(t *testing.T) {
	r := NewResolver()

	onPrem := r.Resolve("/abap-docs-758", "docs/abenselect.md", "")
	assert.Equal(t, "https://help.sap.com/doc/abapdocu_758_index_htm/7.58/en-US/abenselect.html", onPrem)

	cloud := r.Resolve("/abap-docs-cloud", "docs/abenselect.md", "")
	assert.Equal(t, "https://help.sap.com/doc/abapdocu_cp_index_htm/CLOUD/en-US/abenselect.html", cloud)
}

func TestResolveUnknownLibrary(t *testing.T) {
	r := NewResolver()

	assert.Equal(t, "", r.Resolve("/nonexistent", "a.md", "# A"))
	assert.False(t, r.Known("/nonexistent"))
	assert.True(t, r.Known("/sapui5"))
}

func TestResolveNeverPanicsOnGarbage(t *testing.T) {
	r := NewResolver()

	assert.Equal(t, "", r.Resolve("/openui5-api", "", ""))
	assert.Equal(t, "", r.Resolve("/openui5-api", "not-a-js-path.md", ""))
	assert.Equal(t, "", r.Resolve("/openui5-samples", "path/without/marker.js", ""))
}
