package helpers

// Script paths of the sample project.
const (
	ScriptS2     = "client/services/S2/S2.js"
	ScriptS      = "client/services/S/S.js"
	ScriptFoo    = "client/services/Foo/Foo.js"
	ScriptA      = "client/components/pages/A/A.js"
	ScriptB      = "client/components/blocks/B/B.js"
	ScriptBar    = "client/components/blocks/Bar/Bar.js"
	ScriptTabbed = "client/behaviors/tabbed/tabbed.js"
	ScriptTour   = "client/guides/tour/tour.js"
	ScriptApp    = "client/app.js"
	ScriptCore   = "client/core/core.js"
)

// SampleProject is a small project:
//
//	services:   S2, S -> S2, Foo
//	behaviors:  tabbed -> service Foo
//	guides:     tour
//	components: A -> services S, markup B + tabbed (+ mobile variant); B; Bar -> service Foo
func SampleProject() map[string]string {
	return map[string]string{
		ScriptS2:  "wilson.service('S2', function($http) {\n  return {};\n});\n",
		ScriptS:   "wilson.service('S', function($q, S2) {\n  return { two: S2 };\n});\n",
		ScriptFoo: "wilson.utility('Foo', function(angular) {\n  return {};\n});\n",

		ScriptA: "wilson.component('A', {\n  controller: ['$scope', 'S', function($scope, S) {}]\n});\n",
		"client/components/pages/A/A.html":        `<div ht-behavior="tabbed"><ht-B></ht-B><ht-unknown></ht-unknown></div>`,
		"client/components/pages/A/A.mobile.html": `<div class="mobile"><ht-B></ht-B></div>`,
		"client/components/pages/A/A.scss":        ".a { color: red; }\n",

		ScriptB:                                  "wilson.component('B', {\n  controller: ['$scope', function($scope) {}]\n});\n",
		"client/components/blocks/B/B.html":      `<span>B</span>`,
		"client/components/blocks/B/.B.html.swp": "noise",

		ScriptBar:                              "wilson.component('Bar', {\n  controller: ['Foo', function(Foo) {}]\n});\n",
		"client/components/blocks/Bar/Bar.html": `<p>Bar</p>`,

		ScriptTabbed: "wilson.behavior('tabbed', function($timeout, Foo) {});\n",

		ScriptTour:                       "wilson.component('tour', {\n  controller: [function() {}]\n});\n",
		"client/guides/tour/tour.html":   `<section>tour</section>`,
		"client/components/pages/.cache/x.js": "noise",

		ScriptApp:  "wilson.config(function($locationProvider, S) {});\nwilson.run(function(Foo) {});\n",
		ScriptCore: "window.wilson = {};\n",
	}
}
