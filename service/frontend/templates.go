package frontend

import (
	"html/template"
)

var (
	indexPageTemplate = template.Must(template.New("index").Parse(`
<!DOCTYPE html>
<html>
  <head>
    <meta charset="UTF-8">
    <title>WebRank</title>
    <style>
      .l{font-size:3em;font-weight:bold;text-align:center;text-shadow: 1px 1px 1px rgba(0,0,0,0.4);}
      .b{color:#1a56b0;}
      .o{color:#e8710a;}
      .tc{margin-top:20px;text-align:center;}
      .t{border:1px solid lightgray;border-radius:24px;padding:10px;width:40%;}
      .sb{padding:10px;margin-top:20px;}
      input:focus{outline: none;}
      a{color:#1a56b0;text-decoration:none;font-size:0.8em;}
      a:visited{color:#1a56b0;}
  </style>
  </head>
  <body>
    <header class="l">
      <span class="b">Web</span><span class="o">Rank</span>
    </header>
    <section class="tc">
      <form action="{{.searchEndpoint}}">
      <input class="t" type="text" name="q" placeholder="Enter search term"/>
      <br>
      <input class="sb" type="submit" value="Search"/>
      </form>
      <br/><br/>
      <a rel="nofollow" href="{{.submitLinkEndpoint}}">Submit Web Site</a>
    </section>
  </body>
</html>
`))

	msgPageTemplate = template.Must(template.New("message").Parse(`
<!DOCTYPE html>
<html>
  <head>
    <meta charset="UTF-8">
    <title>WebRank | {{.messageTitle}} </title>
    <style>
      .is{display:inline;}
      .l{font-size:2em;font-weight:bold;text-shadow: 1px 1px 1px rgba(0,0,0,0.4);}
      .l a{text-decoration: none;}
      .b{color:#1a56b0;}
      .o{color:#e8710a;}
      .t{border:1px solid lightgray;border-radius:24px;padding:10px;width:40%;}
      .sb{padding:10px;margin-top:20px;}
      form{display:inline;padding-left:10px;}
      hr{border:1px solid gray;}
      .rc{padding:10px 20px;}
      .rc .rt {color:grey;font-size:1.1em;}
      input:focus{outline: none;}
    </style>
  </head>
  <body>
    <header>
      <section class="l is">
        <a href="{{.indexEndpoint}}">
        <span class="b">Web</span><span class="o">Rank</span>
        </a>
      </section>
      <section class="is">
      <form action="{{.searchEndpoint}}">
        <input class="t" type="text" name="q" placeholder="Enter search term" value="{{.searchTerms}}"/>
        <input class="sb" type="submit" value="Search"/>
      </form>
      </section>
    </header>
    <hr/>
    <section class="rc">
      <span class="rt">{{.messageContent}}</span>
    </section>
  </body>
</html>
`))

	submitLinkPageTemplate = template.Must(template.New("submit").Parse(`
<!DOCTYPE html>
<html>
  <head>
    <meta charset="UTF-8">
    <title>WebRank | Submit Web Site</title>
    <style>
      .l{font-size:2em;font-weight:bold;text-shadow: 1px 1px 1px rgba(0,0,0,0.4);}
      .l a{text-decoration: none;}
      .b{color:#1a56b0;}
      .o{color:#e8710a;}
      .tc{margin-top:20px;text-align:center;}
      .t{border:1px solid lightgray;border-radius:24px;padding:10px;width:40%;}
      .sb{padding:10px;margin-top:20px;}
      .rt{color:grey;font-size:1.1em;}
      input:focus{outline: none;}
    </style>
  </head>
  <body>
    <header class="l">
      <a href="{{.indexEndpoint}}">
      <span class="b">Web</span><span class="o">Rank</span>
      </a>
    </header>
    <section class="tc">
      <form action="{{.submitLinkEndpoint}}" method="POST">
      <input class="t" type="text" name="link" placeholder="Enter web site URL"/>
      <br>
      <input class="sb" type="submit" value="Submit"/>
      </form>
      <br/>
      <span class="rt">{{.messageContent}}</span>
    </section>
  </body>
</html>
`))

	resultsPageTemplate = template.Must(template.New("results").Parse(`
<!DOCTYPE html>
<html>
  <head>
    <meta charset="UTF-8">
    <title>WebRank | Search</title>
    <style>
      .is{display:inline;}
      .l{font-size:2em;font-weight:bold;text-shadow: 1px 1px 1px rgba(0,0,0,0.4);}
      .l a{text-decoration: none;}
      .b{color:#1a56b0;}
      .o{color:#e8710a;}
      .t{border:1px solid lightgray;border-radius:24px;padding:10px;width:40%;}
      .sb{padding:10px;margin-top:20px;}
      form{display:inline;padding-left:10px;}
      hr{border:1px solid gray;}
      .rc{padding:10px 20px;}
      .rc .rt {color:grey;font-size:0.9em;}
      .rc .ml {text-decoration:none;display:inline-block;font-size:1.0em;font-weight:bold;margin-bottom:0;text-overflow:ellipsis;white-space:nowrap;overflow:hidden;}
      .rc cite{color:green;font-size:0.8em;display:block;margin-bottom:2px;}
      .rc .ms {text-align:justify;font-size:0.9em;}
      .pg{padding:20px;}
      input:focus{outline: none;}
    </style>
  </head>
  <body>
    <header>
      <section class="l is">
        <a href="{{.indexEndpoint}}">
        <span class="b">Web</span><span class="o">Rank</span>
        </a>
      </section>
      <section class="is">
      <form action="{{.searchEndpoint}}">
        <input class="t" type="text" name="q" placeholder="Enter search term" value="{{.searchTerms}}"/>
        <input class="sb" type="submit" value="Search"/>
      </form>
      </section>
    </header>
    <hr/>
    <section class="rc">
      <span class="rt">Displaying results {{.pagination.From}} to {{.pagination.To}} from {{.pagination.Total}}</span>
      {{range .results}}
      <article>
        <a class="ml" href="{{.URL}}">{{.Title}}</a>
        <cite>{{.URL}}</cite>
        <span class="ms">{{.HighlightedSummary}}</span>
      </article>
      {{end}}
    </section>
    <section class="pg">
      {{if .pagination.PrevLink}}<a href="{{.pagination.PrevLink}}">&laquo; Previous</a>{{end}}
      {{if .pagination.NextLink}}<a href="{{.pagination.NextLink}}">Next &raquo;</a>{{end}}
    </section>
  </body>
</html>
`))
)
