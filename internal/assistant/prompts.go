package assistant

// Prompt templates filled in via fmt.Sprintf. Keep the argument order in
// sync with the call sites.

const classifyTemplate = `You are sorting my sent email. Decide whether the following message is related to jobs, careers, internships, or recruiting (applications, interviews, offers, follow-ups with recruiters or hiring managers).

Subject: %s
Snippet: %s

Answer with a single word: YES if it is job or career related, NO otherwise.`

const filterTemplate = `You are filtering a list of my sent emails. Each line is: id | sender | subject | date.

%s

Request: %s

Reply with a JSON array containing only the ids of the emails that match the request, for example ["id1","id2"]. Reply with [] if none match.`

const followUpTemplate = `You are an expert AI assistant helping me write professional emails.
I sent an email to %s about "%s" on %s.
Here is the email thread content:
%s

Your goal: Write a polite, professional, and concise follow-up email.
Context: %s
Draft:`

const coldEmailTemplate = `You are an expert AI assistant helping me write professional emails.
I want to send a cold email to %s.
Topic: %s
My Background: %s
Goal: %s

Draft a high-converting cold email that creates curiosity and value.
Draft:`
