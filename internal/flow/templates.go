package flow

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/videopage"
)

// The generated documents target a flow-based course platform whose own
// template language uses {% %} and {{ }}; those sequences must survive into
// the output literally, which is why these are text/template (no escaping)
// and why literal {{ runs are written as {{"{{"}}.

const flowTemplateText = `title: "{{ .Name }}"
description: |
{{- if .Description }}
    <div class="well">
    {{ indent 4 .Description }}
    </div>
{{- end }}

rules:
    access:
    -
        if_has_role: [student, ta, instructor]
        permissions: [view]

    grade_identifier: null

pages:

{{ range .Pages }}-
    type: Page
    id: {{ .ID }}
    content: |
        # {{ .Title }}

        {{ indent 8 .Content }}

{{ end }}`

const videoTemplateText = `<video class="video-js vjs-default-skin vjs-fluid vjs-big-play-centered" controls preload="none" data-setup='[]' playsinline>
  <source src='{{ .URL }}' type='video/mp4' />
  {{ range .Subtitles }}<track kind='captions' src='{{ .URL }}' srclang='{{ .Lang }}' label='{{ .LangName }}'{{ if .Default }} default{{ end }} />
  {{ end }}</video>
`

const resourcesTemplateText = `<hr>

{% from "macros.jinja" import downloadviewpdf %}

<h3>Resources</h3>
<ul>{{ range . }}
  <li>{{ if .IsPDF }}{{"{{"}} downloadviewpdf("{{ .URL }}", "{{ .FileName }}") }}{{ else }}
  {{ .Type }}: <a href="{{ .URL }}" target="_blank" download="{{ .FileName }}">{{ .Name }}</a>{{ end }}</li>{{ end }}
</ul>
`

const manifestEmbedTemplateText = `-
    title: "Course: {{ .Course.Name }}"
    id: {{ .Course.Slug }}
    collapsible: True

    content: |
        ## {{ .Course.Name }}

        {% from "macros.jinja" import accordion, button, file %}

        {{ range $i, $f := .Flows }}#### Module {{ inc $i }}: {{ $f.Name }} {{"{{"}} button("flow:{{ $f.ID }}") }}

        {{ $f.Description }}

        <hr>

        {{ end }}`

const manifestStandaloneTemplateText = `chunks:

-
    title: "{{ .Course.Name }}"
    id: toc
    content: |


{{ range $i, $f := .Flows }}-
    title: "Module {{ inc $i }}: {{ $f.Name }}"
    id: {{ underscore $.Course.Slug }}_module_{{ inc $i }}
    collapsible: True

    content: |
        {% from "macros.jinja" import accordion, button, file %}

        #### Module {{ inc $i }}: {{ $f.Name }} {{"{{"}} button("flow:{{ $f.ID }}") }}

        {{ indent 8 $f.Description }}

        <hr>

{{ end }}`

var tmplFuncs = template.FuncMap{
	// indent shifts every line after the first by width spaces, so a
	// multi-line value stays inside its YAML block scalar.
	"indent": func(width int, s string) string {
		return strings.ReplaceAll(s, "\n", "\n"+strings.Repeat(" ", width))
	},
	"inc":        func(i int) int { return i + 1 },
	"underscore": func(s string) string { return strings.ReplaceAll(s, "-", "_") },
}

var (
	flowTmpl               = template.Must(template.New("flow").Funcs(tmplFuncs).Parse(flowTemplateText))
	videoTmpl              = template.Must(template.New("video").Parse(videoTemplateText))
	resourcesTmpl          = template.Must(template.New("resources").Parse(resourcesTemplateText))
	manifestEmbedTmpl      = template.Must(template.New("embed").Funcs(tmplFuncs).Parse(manifestEmbedTemplateText))
	manifestStandaloneTmpl = template.Must(template.New("standalone").Funcs(tmplFuncs).Parse(manifestStandaloneTemplateText))
)

// resourceEntry is one downloadable item asset listed under a video page.
type resourceEntry struct {
	URL      string
	Type     string
	Name     string
	FileName string
	IsPDF    bool
}

type manifestData struct {
	Course models.Course
	Flows  []Flow
}

func renderFlowDoc(f Flow) ([]byte, error) {
	var buf bytes.Buffer
	if err := flowTmpl.Execute(&buf, f); err != nil {
		return nil, fmt.Errorf("flow: render flow %s: %w", f.ID, err)
	}
	return buf.Bytes(), nil
}

func renderVideo(p *videopage.Page) (string, error) {
	var buf bytes.Buffer
	if err := videoTmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("flow: render video: %w", err)
	}
	return buf.String(), nil
}

func renderResources(entries []resourceEntry) (string, error) {
	var buf bytes.Buffer
	if err := resourcesTmpl.Execute(&buf, entries); err != nil {
		return "", fmt.Errorf("flow: render resources: %w", err)
	}
	return buf.String(), nil
}

func renderManifest(embed bool, course models.Course, flows []Flow) ([]byte, error) {
	t := manifestStandaloneTmpl
	if embed {
		t = manifestEmbedTmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, manifestData{Course: course, Flows: flows}); err != nil {
		return nil, fmt.Errorf("flow: render manifest: %w", err)
	}
	return buf.Bytes(), nil
}
