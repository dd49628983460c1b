package browser

// In-page scripts backing the Page operations. Each is an IIFE-ready function
// expression that receives its JSON-encoded argument.

const anyVisibleScript = `function(selectors) {
	const visible = el => el.getClientRects().length > 0 || el.tagName === 'IFRAME';
	for (const sel of selectors) {
		try {
			for (const el of document.querySelectorAll(sel)) {
				if (visible(el)) return true;
			}
		} catch (e) {}
	}
	return false;
}`

const prepareFormScript = `function(email) {
	const visible = el => el.getClientRects().length > 0;
	const fire = el => {
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
	};
	const labelText = el => {
		let t = (el.getAttribute('aria-label') || '') + ' ' + (el.value || '') + ' ' + (el.name || '') + ' ' + (el.id || '');
		if (el.id) {
			const lab = document.querySelector('label[for="' + el.id + '"]');
			if (lab) t += ' ' + lab.innerText;
		}
		const parent = el.closest('label');
		if (parent) t += ' ' + parent.innerText;
		return t.toLowerCase();
	};

	try {
		for (const el of document.querySelectorAll('input[type="email"], input[name*="email" i], input[id*="email" i]')) {
			if (visible(el) && !el.value) { el.value = email; fire(el); }
		}
	} catch (e) {}

	try {
		for (const sel of document.querySelectorAll('select')) {
			if (!visible(sel)) continue;
			const name = ((sel.name || '') + ' ' + (sel.id || '')).toLowerCase();
			if (!name.includes('reason')) continue;
			for (let i = 0; i < sel.options.length; i++) {
				const o = sel.options[i];
				if (o.value && !o.disabled) { sel.selectedIndex = i; fire(sel); break; }
			}
		}
	} catch (e) {}

	try {
		const allRe = /unsubscribe\s*(from)?\s*all|all\s*(emails?|lists?|communications?|messages)/;
		for (const radio of document.querySelectorAll('input[type="radio"]')) {
			if (!visible(radio) || radio.checked) continue;
			if (allRe.test(labelText(radio))) { radio.checked = true; fire(radio); }
		}
	} catch (e) {}

	try {
		const confirmRe = /confirm|agree|unsubscribe|i understand/;
		const subscriptionRe = /subscri|newsletter|updates|offers|promotions|digest/;
		for (const cb of document.querySelectorAll('input[type="checkbox"]')) {
			if (!visible(cb)) continue;
			const label = labelText(cb);
			if (confirmRe.test(label)) {
				if (!cb.checked) { cb.checked = true; fire(cb); }
			} else if (subscriptionRe.test(label) && cb.checked) {
				cb.checked = false; fire(cb);
			}
		}
	} catch (e) {}

	try {
		for (const t of document.querySelectorAll('[role="switch"][aria-checked="true"]')) {
			if (visible(t)) t.click();
		}
	} catch (e) {}

	return true;
}`

const clickFirstScript = `function(pattern) {
	const visible = el => el.getClientRects().length > 0;
	const candidates = document.querySelectorAll(
		'button, a, input[type="submit"], input[type="button"], [role="button"]');
	for (const el of candidates) {
		if (!visible(el)) continue;
		const text = ((el.innerText || '') + ' ' + (el.value || '')).trim().toLowerCase();
		const attrs = ((el.id || '') + ' ' + (el.className || '') + ' ' + (el.name || '') + ' ' +
			(el.getAttribute('aria-label') || '')).toLowerCase();
		let hit = false;
		for (const t of (pattern.texts || [])) {
			if (text.includes(t)) { hit = true; break; }
		}
		if (!hit) {
			for (const a of (pattern.attrs || [])) {
				if (attrs.includes(a)) { hit = true; break; }
			}
		}
		if (hit) { el.click(); return true; }
	}
	return false;
}`
